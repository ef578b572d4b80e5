package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/marketwire/server/internal/config"
	"codeberg.org/marketwire/server/internal/logger"
)

func main() {
	logger.Info("starting marketwire server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	// feed polls and LLM-backed ingestion can outlast a normal request
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
