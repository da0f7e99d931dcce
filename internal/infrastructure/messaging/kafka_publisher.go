package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// typedEvent is satisfied by the domain events, which carry their own type
// identifier.
type typedEvent interface {
	EventType() string
}

// messageWriter abstracts the kafka-go writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher implements port.EventPublisher using Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates a Kafka event publisher for the given topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger,
	}
}

// Publish sends domain events to Kafka. Each event is keyed by its type so
// consumers can partition by event kind.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...interface{}) error {
	messages := make([]kafkago.Message, 0, len(events))
	for _, evt := range events {
		eventType := "unknown"
		if te, ok := evt.(typedEvent); ok {
			eventType = te.EventType()
		}

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshalling event %s: %w", eventType, err)
		}

		messages = append(messages, kafkago.Message{
			Key:   []byte(eventType),
			Value: payload,
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("published events", "topic", p.topic, "count", len(messages))
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
