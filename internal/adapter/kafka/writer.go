// Package kafka publishes canonical rainfall rows to an optional sink
// topic for downstream consumers. The CSV file remains the durable
// contract; the topic is a convenience feed.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/rainfall-etl/internal/config"
	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

// Writer produces canonical rows to a Kafka topic. It implements
// pipeline.RowPublisher.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Each
// Writer carries a fresh run ID so consumers can tell ingest runs apart.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, runID: uuid.NewString(), logger: logger}
}

// PublishRows serializes and publishes the rows in a single WriteMessages
// call, keyed by station so one station's rows stay ordered within a
// partition.
func (w *Writer) PublishRows(ctx context.Context, rows []domain.Observation) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := w.serializeToMessage(rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	w.logger.Info("publishing canonical rows", "count", len(msgs), "run_id", w.runID)
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) serializeToMessage(row domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize canonical row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(w.runID)},
			{Key: "date", Value: []byte(row.Date.Format("2006-01-02"))},
			{Key: "processed_at", Value: []byte(row.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
