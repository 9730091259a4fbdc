package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const sourceHeader = "tempest"

// Insert runs inline in the receive loop, so a write must not linger on
// batching or retry for long when the broker is unavailable.
const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 2 * time.Second
	maxAttempts  = 2
)

// Writer publishes normalized observations to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    1,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		MaxAttempts:  maxAttempts,
	}
	logger.Info("kafka sink enabled", "brokers", brokers, "topic", topic)
	return &Writer{writer: w, logger: logger}
}

// Insert publishes one observation. Messages are keyed by observation time so
// every report for the same minute lands on the same partition.
func (w *Writer) Insert(ctx context.Context, weather domain.Weather) error {
	msg, err := serializeToMessage(weather)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish observation: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Weather into a Kafka message.
func serializeToMessage(weather domain.Weather) (kafkago.Message, error) {
	data, err := json.Marshal(weather)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	observedAt := time.Unix(weather.TimeEpoch, 0).UTC()
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(weather.TimeEpoch, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(sourceHeader)},
			{Key: "observed_at", Value: []byte(observedAt.Format(time.RFC3339))},
		},
	}, nil
}
