package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetit/internal/cache"
	"budgetit/internal/cli"
	applog "budgetit/internal/log"
	"budgetit/internal/worker"
)

const seenMessagesCapacity = 10000

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(nil, os.Getenv("BUDGETIT_CONFIG"))
	if err != nil {
		applog.Default().Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentWorker)
	logger.Info("Starting budgetit-worker", "backend", cfg.DataBackend, "queue", cfg.AMQPQueue)

	rt, err := cli.OpenLedger(context.Background(), cfg, logger, true)
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err)
		os.Exit(1)
	}

	seen := cache.NewLRUCache[time.Time](seenMessagesCapacity, cfg.DedupWindow)
	rt.RegisterCache(seen)
	rt.StartCacheCleanup(time.Minute)

	audit := worker.NewAuditWorker(rt.Ledger, seen, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stats := audit.Stats()
		logger.Info("Worker statistics",
			"processed", stats.Processed,
			"duplicates", stats.Duplicates,
			"stale", stats.Stale,
			"alerts", stats.Alerts)
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close ledger", applog.FieldError, err)
		}
	})

	// On startup, log where the month stands
	if err := audit.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup check", applog.FieldError, err)
		// Don't exit - continue with normal operation
	}

	go func() {
		err := rt.Backend.Broker.ConsumeLedgerEvents(ctx, audit.HandleMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
