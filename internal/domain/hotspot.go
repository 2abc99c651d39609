package domain

// Hotspot is a finalized cluster summarized by its centroid.
type Hotspot struct {
	Centroid     Coordinates
	ReportCount  int
	SeverityTier Severity
	RadiusMeters float64
}

// EnrichedHotspot is a Hotspot with a precipitation forecast attached.
// The embedded spatial fields are never modified by enrichment.
type EnrichedHotspot struct {
	Hotspot
	Forecast ForecastResult
}
