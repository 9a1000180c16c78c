package backend

import (
	"context"
	"errors"
	"fmt"

	"budgetit/internal/amqp"
	"budgetit/internal/ledger"
	"budgetit/internal/ledger/memory"
	applog "budgetit/internal/log"
	"budgetit/internal/storage"
)

// DefaultFactory opens stores and brokers from a Config.
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Default()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when set, the broker.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store ledger.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	broker, err := f.connectBroker(ctx, config)
	if err != nil {
		store.Close()
		return nil, err
	}

	result := &BackendResult{
		Store:   store,
		Broker:  broker,
		Cleanup: cleanup(store, broker),
	}
	// Assigned only when non-nil so the interface stays nil without a broker.
	if broker != nil {
		result.Publisher = broker
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (ledger.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore() ledger.Store {
	f.logger.Info("Initialized memory backend")
	return memory.New()
}

// connectBroker opens the AMQP client when configured. Failure is fatal only
// when the caller requires a broker.
func (f *DefaultFactory) connectBroker(ctx context.Context, config Config) (*amqp.Client, error) {
	if config.AMQPURL == "" {
		return nil, nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		if config.RequireBroker {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil, nil
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, nil
}

func cleanup(store ledger.Store, broker *amqp.Client) CleanupFunc {
	return func() error {
		var errs []error
		if broker != nil {
			errs = append(errs, broker.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
}
