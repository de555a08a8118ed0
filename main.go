package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	app, cleanup, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", cfg.AppPort, "driver", cfg.DBDriver)
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		logger.Error("error during Fiber shutdown", "error", err)
	}
	logger.Info("server gracefully stopped")
}
