package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/config"
	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedAt(lat, lon float64, hourly []float64) domain.EnrichedHotspot {
	return domain.EnrichedHotspot{
		Hotspot: domain.Hotspot{
			Centroid:     domain.Coordinates{Lat: lat, Lon: lon},
			ReportCount:  20,
			SeverityTier: domain.SeverityMedium,
			RadiusMeters: domain.ClusterRadiusMeters,
		},
		Forecast: domain.ClassifyRainfall(hourly),
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC)
	h := enrichedAt(12.950012, 77.650049, []float64{0, 3.1, 1.0})

	msg, err := serializeToMessage("run-1", now, h)
	require.NoError(t, err)

	assert.Equal(t, []byte("12.9500,77.6500"), msg.Key)
	assert.Equal(t, now, msg.Time)

	var feature domain.Feature
	require.NoError(t, json.Unmarshal(msg.Value, &feature))
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, [2]float64{77.650049, 12.950012}, feature.Geometry.Coordinates)
	assert.Equal(t, 20, feature.Properties.Count)
	assert.Equal(t, domain.RiskMedium, feature.Properties.FuturePrediction)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, HeaderRunID, msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, HeaderFuturePrediction, msg.Headers[1].Key)
	assert.Equal(t, []byte("Medium"), msg.Headers[1].Value)
	assert.Equal(t, HeaderGeneratedAt, msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_UnavailableForecast(t *testing.T) {
	h := enrichedAt(12.93, 77.62, nil)
	h.Forecast = domain.UnavailableForecast()

	msg, err := serializeToMessage("run-2", time.Now(), h)
	require.NoError(t, err)

	assert.Equal(t, []byte("Unavailable"), msg.Headers[1].Value)
	assert.Contains(t, string(msg.Value), `"max_intensity_mm_hr":null`)
}

func TestNewWriter_UsesHotspotTopic(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:      []string{"localhost:9092"},
		KafkaHotspotTopic: "flood-hotspots",
	}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "flood-hotspots", w.writer.Topic)
}

func TestPublishHotspots_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaHotspotTopic: "unused"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.PublishHotspots(context.Background(), "run-3", nil))
}
