// Package events publishes CRM activity to a message broker so other systems
// can follow lifecycle changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/amzmarine/crm/internal/config"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes a keyed event.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

// KafkaProducer publishes JSON-encoded events to a single topic.
type KafkaProducer struct {
	writer Writer
	topic  string
}

// NewKafkaProducer creates a producer writing to topic on broker. Writes are
// asynchronous and delivery failures are logged.
func NewKafkaProducer(broker, topic string) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Warn("kafka delivery failed", "topic", topic, "messages", len(messages), "error", err)
			}
		},
	}
	return &KafkaProducer{writer: w, topic: topic}
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer) *KafkaProducer {
	return &KafkaProducer{writer: w}
}

// Publish marshals value to JSON and writes one message with the given key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", key, err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b}); err != nil {
		slog.WarnContext(ctx, "kafka write failed", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("failed to publish event %q: %w", key, err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// NewFromConfig returns a Kafka producer when a broker is configured and Noop otherwise.
func NewFromConfig(cfg config.EventsConfig) Publisher {
	if cfg.KafkaBroker == "" {
		slog.Info("event publishing disabled", "reason", "EVENTS_KAFKA_BROKER not set")
		return Noop{}
	}
	slog.Info("event publishing enabled", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	return NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic)
}
