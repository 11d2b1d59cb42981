// ABOUTME: Entry point for the SparkCalc backend service
// ABOUTME: Serves the electrical calculation engines over an HTTP JSON API

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sparkcalc/sparkcalc/backend/cache"
	"github.com/sparkcalc/sparkcalc/backend/config"
	"github.com/sparkcalc/sparkcalc/backend/handlers"
	"github.com/sparkcalc/sparkcalc/backend/logger"
	"github.com/sparkcalc/sparkcalc/backend/middleware"
	"github.com/sparkcalc/sparkcalc/backend/store"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting SparkCalc Backend", "version", handlers.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	defer c.Close()
	slog.Info("Cache initialized", "ttl", cacheTTL)

	// Initialize calculation store
	var st store.Store
	if cfg.PostgresConfigured() {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("Postgres store configured")
	} else {
		st = store.NewMemoryStore()
		slog.Info("DATABASE_URL not set, saved calculations are kept in memory")
	}
	defer st.Close()

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		metrics = middleware.NewMetrics()
		slog.Info("Prometheus metrics enabled", "path", "/metrics")
	}

	h := handlers.NewHandler(cfg, c, st, metrics)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, cfg, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
