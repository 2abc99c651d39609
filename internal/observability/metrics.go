package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_hotspots"

// Metrics holds the Prometheus counters, histograms, and gauges for hotspot
// detection and forecast enrichment.
type Metrics struct {
	ReportsLoaded    prometheus.Counter
	HotspotsDetected prometheus.Gauge
	ClusterDuration  prometheus.Histogram

	// Forecast enrichment metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss,expired}
	ForecastAPIDuration prometheus.Histogram
	ForecastBreakerOpen prometheus.Gauge
	PacingWait          prometheus.Histogram
	EnrichmentRuns      *prometheus.CounterVec // labels: status={complete,cancelled}
	EnrichmentDuration  prometheus.Histogram

	// Scheduled refresh metrics.
	RefreshRuns *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsLoaded,
		m.HotspotsDetected,
		m.ClusterDuration,
		m.ForecastRequests,
		m.ForecastCache,
		m.ForecastAPIDuration,
		m.ForecastBreakerOpen,
		m.PacingWait,
		m.EnrichmentRuns,
		m.EnrichmentDuration,
		m.RefreshRuns,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_loaded_total",
			Help:      "Total active reports read from the report store.",
		}),
		HotspotsDetected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hotspots_detected",
			Help:      "Number of hotspots emitted by the most recent detection.",
		}),
		ClusterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_duration_seconds",
			Help:      "Duration of hotspot clustering.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast provider requests by outcome.",
		}, []string{"outcome"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_api_duration_seconds",
			Help:      "Forecast provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		ForecastBreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_breaker_open",
			Help:      "1 while the forecast provider circuit breaker is open.",
		}),
		PacingWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_pacing_wait_seconds",
			Help:      "Time spent waiting for the provider rate limiter.",
			Buckets:   []float64{0, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		EnrichmentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_runs_total",
			Help:      "Forecast enrichment runs by completion status.",
		}, []string{"status"}),
		EnrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_duration_seconds",
			Help:      "Duration of a complete forecast enrichment run.",
			Buckets:   []float64{0.01, 0.1, 1, 5, 10, 30, 60, 120, 300},
		}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Scheduled future-hotspot refreshes by outcome.",
		}, []string{"outcome"}),
	}
}
