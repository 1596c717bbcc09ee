package cache

import (
	"context"
	"sync"

	"expensemate/internal/core"
	"expensemate/internal/store"
)

// TransactionStore caches ListAll per owner and invalidates on every write
// that touches that owner. A list read before an invalidation is never
// written back into the cache.
type TransactionStore struct {
	store.TransactionStore
	lists Cache[[]core.Transaction]

	mu  sync.Mutex
	gen map[string]uint64
}

func NewTransactionStore(next store.TransactionStore, lists Cache[[]core.Transaction]) *TransactionStore {
	return &TransactionStore{TransactionStore: next, lists: lists, gen: make(map[string]uint64)}
}

func (s *TransactionStore) ListAll(ctx context.Context, owner string) ([]core.Transaction, error) {
	if cached, ok := s.lists.Get(owner); ok {
		return clone(cached), nil
	}
	s.mu.Lock()
	gen := s.gen[owner]
	s.mu.Unlock()

	list, err := s.TransactionStore.ListAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen[owner] == gen {
		s.lists.Set(owner, clone(list))
	}
	s.mu.Unlock()
	return list, nil
}

func (s *TransactionStore) Create(ctx context.Context, owner string, n core.NewTransaction) (core.Transaction, error) {
	rec, err := s.TransactionStore.Create(ctx, owner, n)
	if err == nil {
		s.Invalidate(owner)
	}
	return rec, err
}

func (s *TransactionStore) Update(ctx context.Context, id string, n core.NewTransaction) (core.Transaction, error) {
	rec, err := s.TransactionStore.Update(ctx, id, n)
	if err == nil {
		s.Invalidate(rec.Owner)
	}
	return rec, err
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	rec, getErr := s.TransactionStore.Get(ctx, id)
	if err := s.TransactionStore.Delete(ctx, id); err != nil {
		return err
	}
	if getErr == nil {
		s.Invalidate(rec.Owner)
	}
	return nil
}

func (s *TransactionStore) DeleteAll(ctx context.Context, owner string) error {
	err := s.TransactionStore.DeleteAll(ctx, owner)
	s.Invalidate(owner)
	return err
}

// Invalidate drops the cached list for owner and discards any fill that
// is still in flight.
func (s *TransactionStore) Invalidate(owner string) {
	s.mu.Lock()
	s.gen[owner]++
	s.lists.Delete(owner)
	s.mu.Unlock()
}

func clone(in []core.Transaction) []core.Transaction {
	if in == nil {
		return nil
	}
	out := make([]core.Transaction, len(in))
	copy(out, in)
	return out
}
