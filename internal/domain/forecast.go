package domain

import "context"

// RiskTier grades the near-term rainfall risk at a hotspot.
type RiskTier string

const (
	RiskLow         RiskTier = "Low"
	RiskMedium      RiskTier = "Medium"
	RiskHigh        RiskTier = "High"
	RiskUnavailable RiskTier = "Unavailable"
)

// Rainfall thresholds. Intensities are mm/hr, accumulation is mm over the
// forecast window.
const (
	HighIntensityMmPerHr    = 7.6
	MediumIntensityMmPerHr  = 2.5
	HighAccumulationMm      = 50.0
	unavailableForecastText = "Forecast unavailable."
)

// ForecastResult is the risk summary for one coordinate. The numeric fields
// are nil when the provider could not be reached.
type ForecastResult struct {
	Risk                RiskTier `json:"risk"`
	Message             string   `json:"message"`
	MaxIntensityMmPerHr *float64 `json:"max_intensity_mm_hr"`
	TotalAccumulationMm *float64 `json:"total_rain_24h"`
}

// Available reports whether the result came from a successful provider call.
func (f ForecastResult) Available() bool {
	return f.Risk != RiskUnavailable
}

// Forecaster fetches the hourly rain series (mm per hour) for the next day.
type Forecaster interface {
	HourlyRain(ctx context.Context, at Coordinates) ([]float64, error)
}

// ClassifyRainfall reduces an hourly rain series to a ForecastResult.
func ClassifyRainfall(hourly []float64) ForecastResult {
	var maxIntensity, total float64
	for _, mm := range hourly {
		if mm > maxIntensity {
			maxIntensity = mm
		}
		total += mm
	}

	result := ForecastResult{
		MaxIntensityMmPerHr: &maxIntensity,
		TotalAccumulationMm: &total,
	}
	switch {
	case maxIntensity >= HighIntensityMmPerHr || total >= HighAccumulationMm:
		result.Risk = RiskHigh
		result.Message = "Heavy rainfall expected. Risk of water logging."
	case maxIntensity >= MediumIntensityMmPerHr:
		result.Risk = RiskMedium
		result.Message = "Moderate rainfall expected."
	case total > 0:
		result.Risk = RiskLow
		result.Message = "Light rainfall expected."
	default:
		result.Risk = RiskLow
		result.Message = "No significant rainfall expected."
	}
	return result
}

// UnavailableForecast is the degraded result used when the provider fails.
func UnavailableForecast() ForecastResult {
	return ForecastResult{
		Risk:    RiskUnavailable,
		Message: unavailableForecastText,
	}
}
