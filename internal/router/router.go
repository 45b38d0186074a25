package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/handlers"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/middleware"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, store ensemble.Store, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, store)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)
	v1 := app.Group("/v1", authMiddleware)

	// Vector discovery
	v1.Get("/vector_names", h.VectorNames)
	v1.Get("/vector_metadata", h.VectorMetadata)

	// Per-realization data
	v1.Get("/realizations_vector_data", h.RealizationsVectorData)
	v1.Get("/timestamps", h.Timestamps)

	// Cross-realization statistics
	v1.Get("/statistical_vector_data", h.StatisticalVectorData)

	// Calculated vectors
	v1.Get("/realizations_calculated_vector_data", h.RealizationsCalculatedVectorData)
	v1.Get("/statistical_calculated_vector_data", h.StatisticalCalculatedVectorData)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, store ensemble.Store, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Webviz Timeseries API",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, store, cfg)

	return app
}
