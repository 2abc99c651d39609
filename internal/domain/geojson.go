package domain

// FeatureCollection is the GeoJSON envelope returned to map clients.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one hotspot rendered as a GeoJSON point feature.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   PointGeometry     `json:"geometry"`
	Properties HotspotProperties `json:"properties"`
}

// PointGeometry holds coordinates in GeoJSON [lon, lat] order.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// HotspotProperties are the feature properties. Prediction fields are only
// present on future-hotspot features.
type HotspotProperties struct {
	Count             int              `json:"count"`
	Severity          Severity         `json:"severity"`
	Radius            float64          `json:"radius"`
	FuturePrediction  RiskTier         `json:"future_prediction,omitempty"`
	PredictionMessage string           `json:"prediction_message,omitempty"`
	Forecast          *ForecastSummary `json:"forecast,omitempty"`
}

// ForecastSummary carries the numeric forecast; both fields are null when the
// forecast is unavailable.
type ForecastSummary struct {
	MaxIntensityMmPerHr *float64 `json:"max_intensity_mm_hr"`
	TotalRain24hMm      *float64 `json:"total_rain_24h"`
}

// NewHotspotFeature renders a hotspot without forecast data.
func NewHotspotFeature(h Hotspot) Feature {
	return Feature{
		Type: "Feature",
		Geometry: PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{h.Centroid.Lon, h.Centroid.Lat},
		},
		Properties: HotspotProperties{
			Count:    h.ReportCount,
			Severity: h.SeverityTier,
			Radius:   h.RadiusMeters,
		},
	}
}

// NewFutureHotspotFeature renders a hotspot with its forecast attached.
func NewFutureHotspotFeature(h EnrichedHotspot) Feature {
	f := NewHotspotFeature(h.Hotspot)
	f.Properties.FuturePrediction = h.Forecast.Risk
	f.Properties.PredictionMessage = h.Forecast.Message
	f.Properties.Forecast = &ForecastSummary{
		MaxIntensityMmPerHr: h.Forecast.MaxIntensityMmPerHr,
		TotalRain24hMm:      h.Forecast.TotalAccumulationMm,
	}
	return f
}

// NewHotspotCollection wraps hotspots in a FeatureCollection.
func NewHotspotCollection(hotspots []Hotspot) FeatureCollection {
	features := make([]Feature, 0, len(hotspots))
	for _, h := range hotspots {
		features = append(features, NewHotspotFeature(h))
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// NewFutureHotspotCollection wraps enriched hotspots in a FeatureCollection.
func NewFutureHotspotCollection(hotspots []EnrichedHotspot) FeatureCollection {
	features := make([]Feature, 0, len(hotspots))
	for _, h := range hotspots {
		features = append(features, NewFutureHotspotFeature(h))
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
