package backend

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// store is what every concrete ledger implementation provides.
type store interface {
	Backend
	ledger.SyncSource
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		s       store
		cleanup CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		s, cleanup = repo, repo.Close
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		s, cleanup = repo, repo.Close
		f.logger.InfoContext(ctx, "Initialized PostgreSQL backend")
	case MemoryBackend:
		s = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Backend: s, SyncSource: s, Cleanup: cleanup}
	f.attachPublisher(ctx, config, s, result)
	return result, nil
}

// attachPublisher wraps the store so mutations are announced on AMQP. The
// broker is optional: a failed dial leaves the plain store in place.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, s store, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger events", "error", err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	publishing := services.NewLedgerService(s, client)
	result.Backend = publishingBackend{
		LedgerService: publishing,
		Reader:        s,
		Pinger:        s,
	}
	result.EventsEnabled = true
	// Closes the AMQP connection and the store, if it holds one.
	result.Cleanup = publishing.Close
}

type publishingBackend struct {
	*services.LedgerService
	ledger.Reader
	ledger.Pinger
}
