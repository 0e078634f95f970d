// Package main is the entry point for the ASIS research platform API
// server. It loads configuration from the environment, connects the
// optional Postgres and Redis backends, and serves the HTTP API with
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/cache"
	"github.com/asisai/asis-deploy/internal/config"
	"github.com/asisai/asis-deploy/internal/logging"
	"github.com/asisai/asis-deploy/internal/server"
	"github.com/asisai/asis-deploy/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.Init(cfg.Logger)
	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"addr":        cfg.Server.Addr(),
	}).Info("Starting ASIS API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres and Redis are both optional: the server runs without
	// them and the affected endpoints report the backend unavailable.
	var db *store.Store
	if cfg.Server.DatabaseURL != "" {
		db, err = store.New(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
	} else {
		logger.Warn("DATABASE_URL not set, running without database")
	}

	var redis *cache.Cache
	if cfg.Server.RedisURL != "" {
		redis, err = cache.New(ctx, cfg.Server.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer func() { _ = redis.Close() }()
	} else {
		logger.Warn("REDIS_URL not set, running without Redis")
	}

	srv := server.New(cfg.Server, db, redis)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
	}

	logger.Info("Server stopped")
}
