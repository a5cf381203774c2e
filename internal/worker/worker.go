package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"prestasync/internal/config"
	"prestasync/internal/logger"
	"prestasync/internal/models"
	"prestasync/internal/sync"
)

const (
	requestTopic = "sync-requests"
	retryDelay   = 30 * time.Second
)

// Request is one sync-request message. TriggeredBy defaults to SYSTEM.
type Request struct {
	TriggeredBy models.SyncTrigger `json:"triggered_by"`
	RequestedAt time.Time          `json:"requested_at"`
}

// Worker consumes sync requests from Kafka and runs a full import pass
// per request. Failed passes are re-run with the RETRY trigger until the
// pass stops asking for a retry.
type Worker struct {
	logger   *logger.Logger
	reader   *kafka.Reader
	importer *sync.Importer
}

func New(cfg *config.Config, logger *logger.Logger, importer *sync.Importer) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "prestasync-worker",
		Topic:          requestTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		logger:   logger,
		reader:   reader,
		importer: importer,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for sync requests...")

	for {
		message, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var request Request
		if err := json.Unmarshal(message.Value, &request); err != nil {
			w.logger.Error("Failed to parse sync request: %v", err)
			continue
		}
		if request.TriggeredBy == "" {
			request.TriggeredBy = models.SyncTriggeredSystem
		}

		w.run(ctx, request.TriggeredBy)
	}
}

func (w *Worker) run(ctx context.Context, trigger models.SyncTrigger) {
	for {
		report, err := w.importer.RunTriggered(ctx, trigger)
		if err != nil {
			w.logger.Error("Sync pass aborted: %v", err)
			return
		}
		if !report.ShouldRetry() {
			return
		}
		w.logger.Info("Sync pass %s had %d failures, retrying",
			report.RunID, report.CategoriesFailed+report.ProductsFailed)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
		trigger = models.SyncTriggeredRetry
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
