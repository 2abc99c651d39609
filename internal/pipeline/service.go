package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// ErrNoReportSource is returned when the service has no report store to read from.
var ErrNoReportSource = errors.New("no report source configured")

// Service is the entry point used by the API and the scheduler: it reads
// active reports, clusters them into hotspots, and optionally enriches them.
type Service struct {
	reports   domain.ReportSource
	clusterer domain.Clusterer
	enricher  *Enricher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates a Service. A nil clusterer uses the anchor clusterer.
func NewService(reports domain.ReportSource, clusterer domain.Clusterer, enricher *Enricher, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if clusterer == nil {
		clusterer = domain.NewAnchorClusterer()
	}
	return &Service{
		reports:   reports,
		clusterer: clusterer,
		enricher:  enricher,
		metrics:   metrics,
		logger:    logger,
	}
}

// DetectHotspots lists active reports and clusters them. An empty store
// yields an empty result, not an error.
func (s *Service) DetectHotspots(ctx context.Context) ([]domain.Hotspot, error) {
	if s.reports == nil {
		return nil, ErrNoReportSource
	}
	points, err := s.reports.ListActiveReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active reports: %w", err)
	}
	s.metrics.ReportsLoaded.Add(float64(len(points)))

	start := time.Now()
	hotspots := domain.DetectHotspots(points, s.clusterer)
	s.metrics.ClusterDuration.Observe(time.Since(start).Seconds())
	s.metrics.HotspotsDetected.Set(float64(len(hotspots)))

	s.logger.Debug("hotspots detected", "reports", len(points), "hotspots", len(hotspots))
	return hotspots, nil
}

// ComputeHotspots returns the current hotspots as a GeoJSON FeatureCollection.
func (s *Service) ComputeHotspots(ctx context.Context) (domain.FeatureCollection, error) {
	hotspots, err := s.DetectHotspots(ctx)
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	return domain.NewHotspotCollection(hotspots), nil
}

// EnrichHotspots detects hotspots and attaches a forecast to each. On
// cancellation the enriched prefix is returned with the context error.
func (s *Service) EnrichHotspots(ctx context.Context) ([]domain.EnrichedHotspot, error) {
	hotspots, err := s.DetectHotspots(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.Enrich(ctx, hotspots)
}

// ComputeFutureHotspots returns the forecast-enriched hotspots as a GeoJSON FeatureCollection.
func (s *Service) ComputeFutureHotspots(ctx context.Context) (domain.FeatureCollection, error) {
	enriched, err := s.EnrichHotspots(ctx)
	if err != nil {
		return domain.NewFutureHotspotCollection(enriched), err
	}
	s.logger.Info("future hotspots computed", "hotspots", len(enriched))
	return domain.NewFutureHotspotCollection(enriched), nil
}

// Forecast returns the rainfall risk for a single point.
func (s *Service) Forecast(ctx context.Context, at domain.Coordinates) (domain.ForecastResult, error) {
	return s.enricher.Lookup(ctx, at)
}

// CheckReadiness delegates to the report store when it can report readiness.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.reports == nil {
		return ErrNoReportSource
	}
	if rc, ok := s.reports.(sharedobs.ReadinessChecker); ok {
		return rc.CheckReadiness(ctx)
	}
	return nil
}
