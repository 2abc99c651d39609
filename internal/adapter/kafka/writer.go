package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/config"
	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/forecast"
	kafkago "github.com/segmentio/kafka-go"
)

// Message header keys set on every published hotspot.
const (
	HeaderRunID            = "run_id"
	HeaderFuturePrediction = "future_prediction"
	HeaderGeneratedAt      = "generated_at"
)

// Writer publishes forecast-enriched hotspots to a Kafka topic, one message
// per hotspot keyed by the quantized centroid.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured hotspot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaHotspotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishHotspots serializes the run's hotspots and writes them in a single
// WriteMessages call.
func (w *Writer) PublishHotspots(ctx context.Context, runID string, hotspots []domain.EnrichedHotspot) error {
	if len(hotspots) == 0 {
		return nil
	}
	generatedAt := time.Now().UTC()
	msgs := make([]kafkago.Message, len(hotspots))
	for i := range hotspots {
		msg, err := serializeToMessage(runID, generatedAt, hotspots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish hotspots: %w", err)
	}
	w.logger.Debug("hotspots published", "run_id", runID, "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage renders a hotspot as its GeoJSON feature.
func serializeToMessage(runID string, generatedAt time.Time, h domain.EnrichedHotspot) (kafkago.Message, error) {
	data, err := json.Marshal(domain.NewFutureHotspotFeature(h))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hotspot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(forecast.Key(h.Centroid)),
		Value: data,
		Time:  generatedAt,
		Headers: []kafkago.Header{
			{Key: HeaderRunID, Value: []byte(runID)},
			{Key: HeaderFuturePrediction, Value: []byte(h.Forecast.Risk)},
			{Key: HeaderGeneratedAt, Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
