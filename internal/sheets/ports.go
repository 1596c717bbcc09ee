// Package sheets declares the spreadsheet mirror that change events are
// replayed onto.
package sheets

import (
	"context"

	"expensemate/internal/core"
)

// Mirror keeps one row per transaction, keyed by transaction id.
type Mirror interface {
	// UpsertRow writes tx into its existing row or appends a new one.
	UpsertRow(ctx context.Context, tx core.Transaction) error
	// DeleteRow clears the row holding id. A missing row is not an error.
	DeleteRow(ctx context.Context, id string) error
	// DeleteOwner clears every row belonging to owner.
	DeleteOwner(ctx context.Context, owner string) error
}
