// Package cli provides common initialization utilities shared by
// cmd/budgetit and cmd/budgetit-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"budgetit/internal/backend"
	"budgetit/internal/cache"
	"budgetit/internal/config"
	"budgetit/internal/core"
	applog "budgetit/internal/log"
	"budgetit/internal/services"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. Logs go to stderr so command output stays clean.
func SetupLogger(cfg *config.Config) *applog.Logger {
	level, err := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info logging", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the config file named configFile (or the
// default budgetit.yaml) into v and validates the result.
func LoadAndValidateConfig(v *viper.Viper, configFile string) (*config.Config, error) {
	if v == nil {
		v = config.NewViper()
	}
	if err := config.ReadConfigFile(v, configFile); err != nil {
		return nil, err
	}
	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runtime is an opened ledger with everything it depends on.
type Runtime struct {
	Config  *config.Config
	Logger  *applog.Logger
	Ledger  *services.Ledger
	Backend *backend.BackendResult

	caches *cache.Manager
}

// OpenLedger opens the configured backend and wires the services around it.
// requireBroker makes a missing or unreachable AMQP broker fatal.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger, requireBroker bool) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	bcfg.RequireBroker = requireBroker

	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger, Backend: res, caches: cache.NewManager()}
	opts := services.Options{Publisher: res.Publisher}
	if cfg.AnalysisCacheSize > 0 {
		summaries := cache.NewLRUCache[core.SpendingSummary](cfg.AnalysisCacheSize, cfg.AnalysisCacheTTL)
		rt.caches.Register(summaries)
		opts.SummaryCache = summaries
	}
	rt.Ledger = services.NewLedger(res.Store, opts)
	return rt, nil
}

// StartCacheCleanup periodically evicts expired entries from every cache
// registered with the runtime. Long-running processes call it once.
func (r *Runtime) StartCacheCleanup(interval time.Duration) {
	r.caches.StartCleanup(interval)
}

// RegisterCache adds c to the runtime's periodic cleanup.
func (r *Runtime) RegisterCache(c cache.Cleaner) {
	r.caches.Register(c)
}

// Close stops cache cleanup and releases the backend.
func (r *Runtime) Close() error {
	r.caches.Stop()
	if r.Backend != nil && r.Backend.Cleanup != nil {
		return r.Backend.Cleanup()
	}
	return nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// ExitCode maps an error onto a process exit status: 0 on success, 2 for
// validation and integrity outcomes, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch core.Classify(err) {
	case core.OutcomeValidationError, core.OutcomeIntegrityBlocked:
		return 2
	default:
		return 1
	}
}
