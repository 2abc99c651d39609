package domain

import (
	"context"
	"time"
)

// Severity is the reporter-assigned (or cluster-derived) severity grade.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ReportType distinguishes the two kinds of incident citizens can file.
type ReportType string

const (
	ReportTypeDrainageBlock ReportType = "Drainage Block"
	ReportTypeWaterLog      ReportType = "Water Log"
)

// Coordinates is a WGS-84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ReportPoint is a read-only view of one active incident report.
type ReportPoint struct {
	ID         string
	Location   Coordinates
	Severity   Severity
	ReportType ReportType
	CreatedAt  time.Time
}

// ReportSource lists the reports that currently count towards hotspots.
// Implementations must return reports in a stable order so that clustering
// is reproducible across calls.
type ReportSource interface {
	ListActiveReports(ctx context.Context) ([]ReportPoint, error)
}
