package main

import (
	"log"

	"prestasync/internal/api"
	"prestasync/internal/config"
	"prestasync/internal/database"
	"prestasync/internal/logger"
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

	// Sync requests are enqueued for the worker to pick up
	requester := worker.NewRequester(cfg.KafkaBrokers)
	defer requester.Close()

	// Initialize API server
	server := api.New(cfg, logger, db, requester)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
