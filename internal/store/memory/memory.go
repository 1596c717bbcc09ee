package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensemate/internal/core"
	"expensemate/internal/store"
)

// Store keeps transactions and preferences in process memory.
type Store struct {
	mu      sync.Mutex
	items   map[string]core.Transaction
	budgets map[string]decimal.Decimal
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		items:   make(map[string]core.Transaction),
		budgets: make(map[string]decimal.Decimal),
	}
}

// Seed inserts records as-is, bypassing validation. It exists so callers can
// load data exported from elsewhere, malformed amounts included.
func (s *Store) Seed(records ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.items[r.ID] = r
	}
}

func (s *Store) Create(_ context.Context, owner string, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	rec := n.Normalize().Record(uuid.NewString(), owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.ID] = rec
	return rec, nil
}

func (s *Store) ListAll(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, r := range s.items {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, store.ErrNotFound)
	}
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.items[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("update %s: %w", id, store.ErrNotFound)
	}
	rec := n.Normalize().Record(id, prev.Owner)
	s.items[id] = rec
	return rec, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Store) DeleteAll(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.items {
		if r.Owner == owner {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *Store) MonthlyBudget(_ context.Context, owner string) (decimal.NullDecimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[owner]
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(b), nil
}

func (s *Store) SetMonthlyBudget(_ context.Context, owner string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &core.ValidationError{Field: "budget", Err: core.ErrNegativeAmount}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[owner] = amount
	return nil
}

func (s *Store) RemoveMonthlyBudget(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, owner)
	return nil
}

func (s *Store) Close() error {
	return nil
}
