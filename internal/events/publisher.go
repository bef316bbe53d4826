package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated   = "order.created"
	TypeOrderCancelled = "order.cancelled"
)

// OrderEvent is the payload published on order lifecycle changes.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// KafkaPublisher writes order events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }
