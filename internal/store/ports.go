// Package store declares the persistence ports the services depend on.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"expensemate/internal/core"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

// Ports for outbound adapters.
type (
	// TransactionStore persists owner-scoped transaction records.
	TransactionStore interface {
		Create(ctx context.Context, owner string, n core.NewTransaction) (core.Transaction, error)
		// ListAll returns the owner's records, newest date first.
		ListAll(ctx context.Context, owner string) ([]core.Transaction, error)
		Get(ctx context.Context, id string) (core.Transaction, error)
		// Update replaces every mutable field of the record with the given id.
		Update(ctx context.Context, id string, n core.NewTransaction) (core.Transaction, error)
		// Delete removes one record; a missing id is not an error.
		Delete(ctx context.Context, id string) error
		DeleteAll(ctx context.Context, owner string) error
	}

	// PreferenceStore holds per-owner settings read by the reporting use cases.
	PreferenceStore interface {
		// MonthlyBudget returns an invalid NullDecimal when no budget is set.
		MonthlyBudget(ctx context.Context, owner string) (decimal.NullDecimal, error)
		SetMonthlyBudget(ctx context.Context, owner string, amount decimal.Decimal) error
		RemoveMonthlyBudget(ctx context.Context, owner string) error
	}

	// Store is implemented by every backend.
	Store interface {
		TransactionStore
		PreferenceStore
		Close() error
	}
)
