package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/forecast"
	"github.com/couchcryptid/flood-hotspot-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	points   []domain.ReportPoint
	err      error
	readyErr error
}

func (f *fakeReports) ListActiveReports(_ context.Context) ([]domain.ReportPoint, error) {
	return f.points, f.err
}

func (f *fakeReports) CheckReadiness(_ context.Context) error { return f.readyErr }

// listOnly has no readiness check of its own.
type listOnly struct{}

func (listOnly) ListActiveReports(_ context.Context) ([]domain.ReportPoint, error) {
	return nil, nil
}

// cluster returns n reports spaced about 11 m apart northward from (lat, lon).
func cluster(prefix string, lat, lon float64, n int) []domain.ReportPoint {
	points := make([]domain.ReportPoint, n)
	for i := range n {
		points[i] = domain.ReportPoint{
			ID:         fmt.Sprintf("%s-%02d", prefix, i),
			Location:   domain.Coordinates{Lat: lat + float64(i)*0.0001, Lon: lon},
			Severity:   domain.SeverityMedium,
			ReportType: domain.ReportTypeWaterLog,
			CreatedAt:  time.Date(2024, 7, 1, 0, i, 0, 0, time.UTC),
		}
	}
	return points
}

func newTestService(reports domain.ReportSource) (*pipeline.Service, *fixture) {
	fx := newFixture(nil)
	svc := pipeline.NewService(reports, nil, fx.enricher, fx.metrics, discardLogger())
	return svc, fx
}

func TestService_ComputeHotspots(t *testing.T) {
	var points []domain.ReportPoint
	points = append(points, cluster("low", 12.93, 77.62, 5)...)
	points = append(points, cluster("noise", 12.99, 77.70, 3)...)
	points = append(points, cluster("high", 12.97, 77.60, 45)...)

	svc, _ := newTestService(&fakeReports{points: points})
	fc, err := svc.ComputeHotspots(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 5, fc.Features[0].Properties.Count)
	assert.Equal(t, domain.SeverityLow, fc.Features[0].Properties.Severity)
	assert.Equal(t, 45, fc.Features[1].Properties.Count)
	assert.Equal(t, domain.SeverityHigh, fc.Features[1].Properties.Severity)
}

func TestService_ComputeHotspots_Idempotent(t *testing.T) {
	points := append(cluster("a", 12.93, 77.62, 20), cluster("b", 12.95, 77.65, 7)...)
	svc, _ := newTestService(&fakeReports{points: points})

	first, err := svc.ComputeHotspots(context.Background())
	require.NoError(t, err)
	second, err := svc.ComputeHotspots(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ComputeHotspots not idempotent (-first +second):\n%s", diff)
	}
}

func TestService_ComputeHotspots_NoReports(t *testing.T) {
	svc, _ := newTestService(&fakeReports{})
	fc, err := svc.ComputeHotspots(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}

func TestService_ComputeHotspots_SourceError(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc, _ := newTestService(&fakeReports{err: storeErr})

	_, err := svc.ComputeHotspots(context.Background())
	require.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "list active reports")
}

func TestService_NoReportSource(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ComputeHotspots(context.Background())
	require.ErrorIs(t, err, pipeline.ErrNoReportSource)
	require.ErrorIs(t, svc.CheckReadiness(context.Background()), pipeline.ErrNoReportSource)
}

func TestService_ComputeFutureHotspots(t *testing.T) {
	points := append(cluster("a", 12.93, 77.62, 5), cluster("b", 12.97, 77.60, 20)...)
	svc, fx := newTestService(&fakeReports{points: points})

	hotspots := domain.DetectHotspots(points, domain.NewAnchorClusterer())
	require.Len(t, hotspots, 2)
	fx.forecaster.series[forecast.Key(hotspots[0].Centroid)] = []float64{8.0}
	fx.forecaster.errs[forecast.Key(hotspots[1].Centroid)] = errors.New("status 503")

	fc, err := svc.ComputeFutureHotspots(context.Background())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, domain.RiskHigh, fc.Features[0].Properties.FuturePrediction)
	require.NotNil(t, fc.Features[0].Properties.Forecast)
	require.NotNil(t, fc.Features[0].Properties.Forecast.MaxIntensityMmPerHr)
	assert.InDelta(t, 8.0, *fc.Features[0].Properties.Forecast.MaxIntensityMmPerHr, 1e-9)

	assert.Equal(t, domain.RiskUnavailable, fc.Features[1].Properties.FuturePrediction)
	assert.Equal(t, "Forecast unavailable.", fc.Features[1].Properties.PredictionMessage)
}

func TestService_Forecast(t *testing.T) {
	svc, fx := newTestService(&fakeReports{})
	at := domain.Coordinates{Lat: 12.9716, Lon: 77.5946}
	fx.forecaster.series[forecast.Key(at)] = []float64{0.2, 0.3}

	result, err := svc.Forecast(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, result.Risk)
	assert.Equal(t, "Light rainfall expected.", result.Message)
}

func TestService_CheckReadiness(t *testing.T) {
	svc, _ := newTestService(&fakeReports{readyErr: errors.New("mongo down")})
	require.EqualError(t, svc.CheckReadiness(context.Background()), "mongo down")

	svc, _ = newTestService(listOnly{})
	require.NoError(t, svc.CheckReadiness(context.Background()))
}
