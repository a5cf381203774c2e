package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"prestasync/internal/models"
)

// Requester enqueues sync requests onto the worker's topic.
type Requester struct {
	writer *kafka.Writer
}

func NewRequester(brokers string) *Requester {
	return &Requester{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers),
			Topic:        requestTopic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
		},
	}
}

func (r *Requester) Enqueue(trigger models.SyncTrigger) error {
	value, err := json.Marshal(Request{
		TriggeredBy: trigger,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(trigger)),
		Value: value,
	})
}

func (r *Requester) Close() error {
	return r.writer.Close()
}
