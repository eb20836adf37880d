package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	skafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Producer publishes JSON values keyed by the caller's key.
type Producer struct {
	writer Writer
	log    zerolog.Logger
}

// NewProducer writes to topic on brokers. Messages with the same key land on
// the same partition.
func NewProducer(brokers []string, topic string, log zerolog.Logger) *Producer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewProducerWithWriter(w, log)
}

func NewProducerWithWriter(w Writer, log zerolog.Logger) *Producer {
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kafka value: %w", err)
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	p.log.Debug().Str("key", key).Int("bytes", len(b)).Msg("event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, key string, value any) error {
	p.log.Info().Str("key", key).Interface("event", value).Msg("event (kafka disabled)")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
