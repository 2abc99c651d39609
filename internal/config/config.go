package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	APIAddr         string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Report store.
	MongoURI               string
	MongoDatabase          string
	MongoReportsCollection string

	// Forecast provider and enrichment.
	ForecastBaseURL  string
	ForecastTimeout  time.Duration
	ForecastCacheTTL time.Duration
	ForecastRate     float64 // requests per second; 0 disables pacing
	ForecastBurst    int
	EnrichTimeout    time.Duration // deadline for one /map/future-hotspots request

	// Scheduled refresh and publishing.
	RefreshInterval   time.Duration // 0 disables the scheduler
	KafkaBrokers      []string
	KafkaHotspotTopic string // empty disables publishing

	// Tracing.
	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	forecastTimeout, err := parsePositiveDuration("FORECAST_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("FORECAST_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	enrichTimeout, err := parsePositiveDuration("ENRICH_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "0s"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FORECAST_RATE", "1"), 64)
	if err != nil || rate < 0 {
		return nil, errors.New("invalid FORECAST_RATE")
	}
	burst, err := strconv.Atoi(sharedcfg.EnvOrDefault("FORECAST_BURST", "1"))
	if err != nil || burst < 1 {
		return nil, errors.New("invalid FORECAST_BURST")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		APIAddr:         sharedcfg.EnvOrDefault("API_ADDR", ":5000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MongoURI:               sharedcfg.EnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:          sharedcfg.EnvOrDefault("MONGO_DATABASE", "monsoonmap"),
		MongoReportsCollection: sharedcfg.EnvOrDefault("MONGO_REPORTS_COLLECTION", "reports"),

		ForecastBaseURL:  sharedcfg.EnvOrDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1"),
		ForecastTimeout:  forecastTimeout,
		ForecastCacheTTL: cacheTTL,
		ForecastRate:     rate,
		ForecastBurst:    burst,
		EnrichTimeout:    enrichTimeout,

		RefreshInterval:   refreshInterval,
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaHotspotTopic: os.Getenv("KAFKA_HOTSPOT_TOPIC"),

		TracingEnabled:     os.Getenv("TRACING_ENABLED") == "true",
		TracingExporter:    sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout"),
		TracingEndpoint:    os.Getenv("TRACING_ENDPOINT"),
		TracingSampleRatio: parseSampleRatio(),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.KafkaHotspotTopic != "" && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_HOTSPOT_TOPIC is set")
	}

	return cfg, nil
}

// PublishingEnabled reports whether refreshed hotspots are sent to Kafka.
func (c *Config) PublishingEnabled() bool {
	return c.KafkaHotspotTopic != ""
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseSampleRatio() float64 {
	if s := os.Getenv("TRACING_SAMPLE_RATIO"); s != "" {
		if r, err := strconv.ParseFloat(s, 64); err == nil && r >= 0 && r <= 1 {
			return r
		}
	}
	return 1.0
}
