package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/forecast"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultRequestTimeout bounds a single provider request.
const DefaultRequestTimeout = 15 * time.Second

// Enricher attaches rainfall forecasts to hotspots. Hotspots are processed
// one at a time so a run never has overlapping provider requests.
type Enricher struct {
	forecaster     domain.Forecaster
	cache          *forecast.Cache
	pacer          *Pacer
	requestTimeout time.Duration
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewEnricher creates an Enricher. A non-positive requestTimeout uses DefaultRequestTimeout.
func NewEnricher(f domain.Forecaster, cache *forecast.Cache, pacer *Pacer, requestTimeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Enricher {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &Enricher{
		forecaster:     f,
		cache:          cache,
		pacer:          pacer,
		requestTimeout: requestTimeout,
		metrics:        metrics,
		logger:         logger,
	}
}

// Enrich returns the hotspots, in input order, each with a forecast attached.
// A failed lookup degrades that hotspot to an Unavailable forecast and the run
// continues. If ctx is cancelled no further requests are started and the
// completed prefix is returned together with ctx.Err().
func (e *Enricher) Enrich(ctx context.Context, hotspots []domain.Hotspot) ([]domain.EnrichedHotspot, error) {
	ctx, span := otel.Tracer("pipeline").Start(ctx, "pipeline.Enrich")
	defer span.End()
	span.SetAttributes(attribute.Int("hotspots", len(hotspots)))

	start := time.Now()
	out := make([]domain.EnrichedHotspot, 0, len(hotspots))
	for _, h := range hotspots {
		result, err := e.Lookup(ctx, h.Centroid)
		if err != nil {
			e.metrics.EnrichmentRuns.WithLabelValues("cancelled").Inc()
			e.logger.Info("enrichment cancelled",
				"completed", len(out), "total", len(hotspots), "reason", err)
			span.SetStatus(codes.Error, err.Error())
			return out, err
		}
		out = append(out, domain.EnrichedHotspot{Hotspot: h, Forecast: result})
	}

	e.metrics.EnrichmentRuns.WithLabelValues("complete").Inc()
	e.metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	return out, nil
}

// Lookup returns the forecast for one point, from the cache when fresh.
// The only error is ctx ending before a provider request could be started;
// provider failures yield an Unavailable result instead.
func (e *Enricher) Lookup(ctx context.Context, at domain.Coordinates) (domain.ForecastResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ForecastResult{}, err
	}

	key := forecast.Key(at)
	cached, status := e.cache.GetWithStatus(key)
	e.metrics.ForecastCache.WithLabelValues(status).Inc()
	if status == forecast.LookupHit {
		return cached, nil
	}

	waited, err := e.pacer.Wait(ctx)
	e.metrics.PacingWait.Observe(waited.Seconds())
	if err != nil {
		return domain.ForecastResult{}, err
	}

	return e.fetch(ctx, key, at), nil
}

// fetch performs one provider request. The request outlives cancellation of
// ctx and is bounded by requestTimeout alone.
func (e *Enricher) fetch(ctx context.Context, key string, at domain.Coordinates) domain.ForecastResult {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.requestTimeout)
	defer cancel()

	hourly, err := e.forecaster.HourlyRain(reqCtx, at)
	if err != nil {
		e.metrics.ForecastRequests.WithLabelValues("error").Inc()
		e.logger.Warn("forecast unavailable",
			"key", key, "lat", at.Lat, "lon", at.Lon, "error", err)
		return domain.UnavailableForecast()
	}

	e.metrics.ForecastRequests.WithLabelValues("success").Inc()
	result := domain.ClassifyRainfall(hourly)
	e.cache.Put(key, result, e.cache.Now())
	return result
}
