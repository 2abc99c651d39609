package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-hotspot-service/internal/adapter/api"
	httpadapter "github.com/couchcryptid/flood-hotspot-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-hotspot-service/internal/adapter/kafka"
	mongoadapter "github.com/couchcryptid/flood-hotspot-service/internal/adapter/mongo"
	"github.com/couchcryptid/flood-hotspot-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-hotspot-service/internal/config"
	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/forecast"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	"github.com/couchcryptid/flood-hotspot-service/internal/pipeline"
	"github.com/couchcryptid/flood-hotspot-service/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFrom(cfg), logger)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	store, err := mongoadapter.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoReportsCollection, logger)
	if err != nil {
		logger.Error("failed to connect report store", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	forecaster := openmeteo.NewClient(cfg.ForecastBaseURL, cfg.ForecastTimeout, metrics, logger)
	cache := forecast.NewCache(clock, cfg.ForecastCacheTTL)
	pacer := pipeline.NewPacer(cfg.ForecastRate, cfg.ForecastBurst, clock)
	enricher := pipeline.NewEnricher(forecaster, cache, pacer, cfg.ForecastTimeout, metrics, logger)
	svc := pipeline.NewService(store, domain.NewAnchorClusterer(), enricher, metrics, logger)

	// Publishing is optional; the scheduler still warms the cache without it.
	var (
		publisher scheduler.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishingEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("hotspot publishing enabled", "topic", cfg.KafkaHotspotTopic)
	}
	refresher := scheduler.New(svc, publisher, cfg.RefreshInterval, metrics, logger)

	opsSrv := httpadapter.NewServer(cfg.HTTPAddr, svc, prometheus.DefaultGatherer, logger)
	app := api.NewApp(svc, cfg.EnrichTimeout, logger)

	// Start ops server.
	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	}()

	// Start map API.
	go func() {
		logger.Info("api server starting", "addr", cfg.APIAddr)
		if err := app.Listen(cfg.APIAddr); err != nil {
			logger.Error("api server error", "error", err)
		}
	}()

	if err := refresher.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	refresher.Stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("report store close error", "error", err)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	logger.Info("shutdown complete")
}
