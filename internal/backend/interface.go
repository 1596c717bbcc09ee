// Package backend assembles the storage stack selected by configuration.
package backend

import (
	"context"
	"time"

	"expensemate/internal/services"
	"expensemate/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is everything the services layer needs from storage.
type BackendResult struct {
	// Transactions is the cached view of Store.
	Transactions store.TransactionStore
	Preferences  store.PreferenceStore
	// Store is the uncached backend, used by the sync worker.
	Store store.Store
	// Events is nil when AMQP is not configured or unreachable.
	Events  services.EventPublisher
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	CacheTTL  time.Duration
	CacheSize int
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
