package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/export"
)

// HeaderRunID carries the scoring run a record belongs to.
const HeaderRunID = "run_id"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes score records to a single topic.
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer. Messages are partitioned by key
// so every record of a ticket lands on the same partition.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}, logger)
}

func newProducer(w messageWriter, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{writer: w, logger: logger.Named("kafka")}
}

// PublishScores sends one message per record in input order, keyed by the
// ticket number.
func (p *Producer) PublishScores(ctx context.Context, runID string, records []export.Record) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.Number, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(rec.Number),
			Value:   data,
			Headers: []kafka.Header{{Key: HeaderRunID, Value: []byte(runID)}},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("failed to publish scores", zap.String("run_id", runID), zap.Error(err))
		return fmt.Errorf("publish run %s: %w", runID, err)
	}

	p.logger.Info("published scores", zap.String("run_id", runID), zap.Int("records", len(msgs)))
	return nil
}

// Close closes the Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
