package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// newApp wires the store, event publisher, services and routes described by
// cfg. The returned cleanup releases everything newApp opened.
func newApp(cfg config.Config, logger *slog.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Repository ---
	var productRepo repositories.ProductRepository
	if cfg.DBDriver == config.DriverMemory {
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { database.Close(db, logger) })
		if err := database.Migrate(db); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		productRepo = repositories.NewGORMProductRepository(db)
	}

	// --- Events ---
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, logger)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				logger.Error("failed to close RabbitMQ client", "error", err)
			}
		})
		publisher = mqClient

		if cfg.RabbitMQConsume {
			if err := mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent(logger)); err != nil {
				logger.Error("failed to start RabbitMQ consumer", "error", err)
			}
		}
	} else {
		logger.Info("RABBITMQ_URL not set, product events disabled")
	}

	productService := services.NewProductService(productRepo, publisher, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	healthHandler := handlers.NewHealthHandler(productService)

	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: os.Stdout,
		}))
	}

	// --- Routes ---
	healthHandler.RegisterRoutes(app)
	app.Get("/search", productHandler.HandleSearchProducts)

	apiV1 := app.Group("/api/v1", middleware.Actor(cfg.DefaultUser))
	productHandler.RegisterRoutes(apiV1)
	healthHandler.RegisterRoutes(apiV1)

	return app, cleanup, nil
}
