package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/events"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/router"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("API service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)
	if cfg.IsDevelopment() {
		logger.Warn("Running in development mode")
	}

	// Series store, optionally wrapped with the Redis cache
	var store ensemble.Store = ensemble.NewHTTPStore(cfg.Store, logger)
	var cache *ensemble.CachedStore
	if cfg.Cache.Enabled {
		logger.Info("Connecting to Redis cache", "url", cfg.Cache.URL)
		cache, err = ensemble.NewCachedStore(store, cfg.Cache, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer func() { _ = cache.Close() }()
		store = cache
	}

	// Ensemble-updated events drop cached series as data changes upstream
	subscriber, err := events.New(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to create events subscriber", "error", err)
	}
	if subscriber != nil && cache != nil {
		logger.Info("Subscribing to ensemble events",
			"type", cfg.Events.Type, "subject", cfg.Events.Subject)
		err = subscriber.Subscribe(func(event events.EnsembleEvent) error {
			return cache.Invalidate(context.Background(), event.CaseUUID, event.Ensemble)
		})
		if err != nil {
			logger.Fatal("Failed to subscribe to ensemble events", "error", err)
		}
	}
	if subscriber != nil {
		defer func() { _ = subscriber.Close() }()
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, store, *cfg)

	go func() {
		addr := cfg.ServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
