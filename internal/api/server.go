package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prestasync/internal/api/handlers"
	"prestasync/internal/api/middleware"
	"prestasync/internal/config"
	"prestasync/internal/database"
	"prestasync/internal/logger"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, requester handlers.SyncRequester) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	collectionHandler := handlers.NewCollectionHandler(db.DB, logger)
	syncHandler := handlers.NewSyncHandler(db.DB, logger, requester)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		// Collections
		collections := v1.Group("/collections")
		{
			collections.GET("", collectionHandler.List)
			collections.GET("/:id", collectionHandler.Get)
		}

		// Sync
		syncs := v1.Group("/sync")
		{
			syncs.POST("", syncHandler.Trigger)
			syncs.GET("/runs", syncHandler.ListRuns)
			syncs.GET("/runs/:id", syncHandler.GetRun)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
