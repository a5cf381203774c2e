package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"prestasync/internal/logger"
)

const Topic = "product-events"

const (
	TypeCollectionCreated = "collection.created"
	TypeCollectionUpdated = "collection.updated"
	TypeProductCreated    = "product.created"
	TypeProductUpdated    = "product.updated"
	TypeVariantDeleted    = "variant.deleted"
	TypeSyncCompleted     = "sync.completed"
)

type Event struct {
	Type       string                 `json:"type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	ExternalID string                 `json:"external_id,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Publisher writes sync events to Kafka for downstream consumers.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) Publish(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop drops events; used when no broker is configured and in tests.
type Noop struct{}

func (Noop) Publish(Event) error {
	return nil
}
