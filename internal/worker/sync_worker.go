// Package worker replays transaction change events onto the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensemate/internal/amqp"
	"expensemate/internal/sheets"
	"expensemate/internal/store"
)

// SyncWorker reads current state from the store and writes it to the mirror.
type SyncWorker struct {
	store     store.TransactionStore
	mirror    sheets.Mirror
	batchSize int
}

func NewSyncWorker(s store.TransactionStore, m sheets.Mirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{store: s, mirror: m, batchSize: batchSize}
}

// HandleEvent applies one event. Returned errors cause the delivery to be requeued.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event", "op", ev.Op, "id", ev.ID, "owner", ev.Owner)

	switch ev.Op {
	case amqp.OpCreated, amqp.OpUpdated:
		tx, err := w.store.Get(ctx, ev.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted before we got here; the row must not linger.
			return w.mirror.DeleteRow(ctx, ev.ID)
		}
		if err != nil {
			return fmt.Errorf("load transaction %s: %w", ev.ID, err)
		}
		if err := w.mirror.UpsertRow(ctx, tx); err != nil {
			return fmt.Errorf("upsert row %s: %w", ev.ID, err)
		}
	case amqp.OpDeleted:
		if err := w.mirror.DeleteRow(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete row %s: %w", ev.ID, err)
		}
	case amqp.OpPurged:
		if err := w.mirror.DeleteOwner(ctx, ev.Owner); err != nil {
			return fmt.Errorf("delete rows of %s: %w", ev.Owner, err)
		}
	default:
		return fmt.Errorf("%w: unknown op %q", amqp.ErrMalformedEvent, ev.Op)
	}
	return nil
}

// Resync writes every record of owner to the mirror, batchSize rows at a time.
// It is the recovery path for events lost while the worker was down.
func (w *SyncWorker) Resync(ctx context.Context, owner string) (int, error) {
	txs, err := w.store.ListAll(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	synced := 0
	for start := 0; start < len(txs); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		end := min(start+w.batchSize, len(txs))
		for _, tx := range txs[start:end] {
			if err := w.mirror.UpsertRow(ctx, tx); err != nil {
				slog.ErrorContext(ctx, "Failed to resync transaction", "id", tx.ID, "error", err)
				continue
			}
			synced++
		}
		slog.InfoContext(ctx, "Resync batch complete", "owner", owner, "synced", synced, "total", len(txs))
	}
	return synced, nil
}
