package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

// HotspotSource produces forecast-enriched hotspots.
type HotspotSource interface {
	EnrichHotspots(ctx context.Context) ([]domain.EnrichedHotspot, error)
}

// Publisher delivers one refresh run's hotspots downstream.
type Publisher interface {
	PublishHotspots(ctx context.Context, runID string, hotspots []domain.EnrichedHotspot) error
}

// Refresher periodically recomputes future hotspots. Each run warms the
// forecast cache and, when a publisher is set, publishes the result.
type Refresher struct {
	scheduler *gocron.Scheduler
	source    HotspotSource
	publisher Publisher
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Refresher. A nil publisher disables publishing; a
// non-positive interval disables scheduling.
func New(source HotspotSource, publisher Publisher, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Refresher{
		scheduler: s,
		source:    source,
		publisher: publisher,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules the refresh job and starts the scheduler in the background.
// The first run starts immediately.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		r.logger.Info("scheduled refresh disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	_, err := r.scheduler.Every(r.interval).Do(func() {
		runCtx, runCancel := context.WithTimeout(ctx, r.interval)
		defer runCancel()
		_ = r.RunOnce(runCtx)
	})
	if err != nil {
		cancel()
		return err
	}

	r.scheduler.StartAsync()
	r.logger.Info("scheduled refresh started", "interval", r.interval, "publishing", r.publisher != nil)
	return nil
}

// RunOnce performs a single refresh. A run cut short by ctx publishes nothing.
func (r *Refresher) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	start := time.Now()

	hotspots, err := r.source.EnrichHotspots(ctx)
	if err != nil {
		r.metrics.RefreshRuns.WithLabelValues("error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("refresh interrupted", "completed", len(hotspots), "reason", err)
		} else {
			logger.Error("refresh failed", "error", err)
		}
		return err
	}

	if r.publisher != nil {
		if err := r.publisher.PublishHotspots(ctx, runID, hotspots); err != nil {
			r.metrics.RefreshRuns.WithLabelValues("error").Inc()
			logger.Error("publish hotspots failed", "error", err, "hotspots", len(hotspots))
			return err
		}
	}

	r.metrics.RefreshRuns.WithLabelValues("success").Inc()
	logger.Info("refresh complete",
		"hotspots", len(hotspots),
		"unavailable", countUnavailable(hotspots),
		"duration", time.Since(start),
	)
	return nil
}

// Stop cancels any running refresh and stops the scheduler.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.scheduler.Stop()
}

func countUnavailable(hotspots []domain.EnrichedHotspot) int {
	n := 0
	for _, h := range hotspots {
		if !h.Forecast.Available() {
			n++
		}
	}
	return n
}
