package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensemate/internal/amqp"
	"expensemate/internal/cache"
	"expensemate/internal/core"
	applog "expensemate/internal/log"
	"expensemate/internal/storage"
	"expensemate/internal/store"
	"expensemate/internal/store/memory"
)

type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		st = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	}

	result := &BackendResult{Store: st, Transactions: st, Preferences: st}
	closers := []func() error{st.Close}

	if config.CacheSize > 0 && config.CacheTTL > 0 {
		lists := cache.NewLRUCache[[]core.Transaction](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager()
		manager.Register(lists)
		manager.StartCleanup(cleanupInterval(config.CacheTTL))
		result.Transactions = cache.NewTransactionStore(st, lists)
		closers = append(closers, func() error { manager.Stop(); return nil })
		f.logger.InfoContext(ctx, "Transaction list cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			result.Events = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if d := 2 * ttl; d > time.Minute {
		return d
	}
	return time.Minute
}
