package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/amiyamandal-dev/blogapi/internal/api"
	"github.com/amiyamandal-dev/blogapi/internal/api/handlers"
	"github.com/amiyamandal-dev/blogapi/internal/backend"
	"github.com/amiyamandal-dev/blogapi/internal/config"
	"github.com/amiyamandal-dev/blogapi/internal/metrics"
	"github.com/amiyamandal-dev/blogapi/internal/repository"
	"github.com/amiyamandal-dev/blogapi/internal/service"
	"github.com/amiyamandal-dev/blogapi/internal/validator"
	"github.com/amiyamandal-dev/blogapi/internal/web"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting blog API server",
		"mode", cfg.Server.Mode,
		"driver", cfg.Store.Driver,
	)

	// Open the article store
	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("Failed to open article store", "driver", cfg.Store.Driver, "error", err)
	}

	registry := metrics.New()
	registry.RegisterPool(store.Driver, store.Pool)

	// Initialize repository and service
	scope := repository.NewScope(store.Pool, cfg.Store.AcquireTimeout, cfg.Store.OpTimeout)
	articleRepo := repository.NewArticleStore(scope, validator.New())
	articleService := service.NewArticleService(
		articleRepo,
		registry,
		service.RetryPolicy{Attempts: cfg.Store.FetchRetries, Backoff: cfg.Store.RetryBackoff},
		log,
	)

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(articleService, log)
	healthHandler := handlers.NewHealthHandler(store, store.Pool, store.Driver, log)
	var staticHandler *web.StaticHandler
	if cfg.Server.StaticDir != "" {
		staticHandler = web.NewStaticHandler(cfg.Server.StaticDir, log)
	}

	router := api.NewRouter(
		articleHandler,
		healthHandler,
		staticHandler,
		registry,
		cfg,
		log,
	)
	engine := router.Setup()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Failed to close article store", "error", err)
	}

	log.Info("Server stopped", "pool", store.Pool.Stats())
	if exitCode != 0 {
		log.Sync()
		os.Exit(exitCode)
	}
}
