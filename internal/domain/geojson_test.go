package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHotspotCollection_JSON(t *testing.T) {
	fc := NewHotspotCollection([]Hotspot{{
		Centroid:     Coordinates{Lat: 12.97, Lon: 77.6},
		ReportCount:  45,
		SeverityTier: SeverityHigh,
		RadiusMeters: 500,
	}})

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [77.6, 12.97]},
			"properties": {"count": 45, "severity": "High", "radius": 500}
		}]
	}`, string(data))
}

func TestNewHotspotCollection_EmptyIsArray(t *testing.T) {
	data, err := json.Marshal(NewHotspotCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, string(data))
}

func TestNewFutureHotspotCollection_JSON(t *testing.T) {
	base := Hotspot{
		Centroid:     Coordinates{Lat: 12.95, Lon: 77.65},
		ReportCount:  20,
		SeverityTier: SeverityMedium,
		RadiusMeters: 500,
	}
	fc := NewFutureHotspotCollection([]EnrichedHotspot{
		{Hotspot: base, Forecast: ClassifyRainfall([]float64{3, 1})},
		{Hotspot: base, Forecast: UnavailableForecast()},
	})

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [77.65, 12.95]},
				"properties": {
					"count": 20, "severity": "Medium", "radius": 500,
					"future_prediction": "Medium",
					"prediction_message": "Moderate rainfall expected.",
					"forecast": {"max_intensity_mm_hr": 3, "total_rain_24h": 4}
				}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [77.65, 12.95]},
				"properties": {
					"count": 20, "severity": "Medium", "radius": 500,
					"future_prediction": "Unavailable",
					"prediction_message": "Forecast unavailable.",
					"forecast": {"max_intensity_mm_hr": null, "total_rain_24h": null}
				}
			}
		]
	}`, string(data))
}
