package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"prestasync/internal/catalog"
	"prestasync/internal/config"
	"prestasync/internal/database"
	"prestasync/internal/events"
	"prestasync/internal/files"
	"prestasync/internal/logger"
	"prestasync/internal/services/prestashop"
	"prestasync/internal/sync"
	"prestasync/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize file storage
	storage, err := files.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize file storage: %v", err)
	}

	// Initialize source client and import pipeline
	source := prestashop.NewClient(cfg.PrestashopURL, cfg.PrestashopWSKey, logger)
	store := catalog.New(db.DB)
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	importer := sync.NewImporter(source, store, storage, publisher, logger, cfg.GenerateNewHandles)

	// Initialize worker
	w := worker.New(cfg, logger, importer)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker
	logger.Info("Starting worker...")
	go w.Start(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	w.Stop()
}
