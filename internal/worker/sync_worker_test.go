package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensemate/internal/amqp"
	"expensemate/internal/core"
	sheetsmem "expensemate/internal/sheets/memory"
	"expensemate/internal/store/memory"
)

type failingMirror struct{ *sheetsmem.Mirror }

func (failingMirror) UpsertRow(context.Context, core.Transaction) error {
	return errors.New("quota exceeded")
}

func newTx(desc string) core.NewTransaction {
	return core.NewTransaction{
		Amount:      "10",
		Category:    core.Travel,
		Type:        core.Expense,
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
	}
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 10)

	a, _ := st.Create(ctx, "o", newTx("train"))
	b, _ := st.Create(ctx, "o", newTx("bus"))
	c, _ := st.Create(ctx, "p", newTx("taxi"))

	for _, tx := range []core.Transaction{a, b, c} {
		if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpCreated, tx.ID, tx.Owner)); err != nil {
			t.Fatalf("created: %v", err)
		}
	}
	if n := len(mirror.Rows()); n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}

	st.Update(ctx, a.ID, newTx("plane"))
	w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpUpdated, a.ID, "o"))
	for _, r := range mirror.Rows() {
		if r.ID == a.ID && r.Description != "plane" {
			t.Errorf("row not updated: %+v", r)
		}
	}

	w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpDeleted, b.ID, "o"))
	if n := len(mirror.Rows()); n != 2 {
		t.Fatalf("rows after delete = %d, want 2", n)
	}

	w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpPurged, "", "o"))
	rows := mirror.Rows()
	if len(rows) != 1 || rows[0].ID != c.ID {
		t.Fatalf("rows after purge = %+v", rows)
	}
}

func TestHandleEventRecordGone(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 10)

	mirror.UpsertRow(ctx, core.Transaction{ID: "stale", Owner: "o"})
	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpUpdated, "stale", "o")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mirror.Rows()) != 0 {
		t.Fatalf("stale row should be removed")
	}
}

func TestHandleEventMirrorFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	w := NewSyncWorker(st, failingMirror{sheetsmem.New()}, 10)
	tx, _ := st.Create(ctx, "o", newTx("x"))

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpCreated, tx.ID, "o")); err == nil {
		t.Fatal("expected mirror error to propagate so the event is requeued")
	}
	if err := w.HandleEvent(ctx, amqp.TransactionEvent{Op: "bogus", Owner: "o"}); !errors.Is(err, amqp.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestResync(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 2)

	for i := 0; i < 5; i++ {
		st.Create(ctx, "o", newTx("t"))
	}
	st.Create(ctx, "other", newTx("t"))

	n, err := w.Resync(ctx, "o")
	if err != nil || n != 5 {
		t.Fatalf("Resync = %d, %v", n, err)
	}
	if len(mirror.Rows()) != 5 {
		t.Fatalf("rows = %d, want 5", len(mirror.Rows()))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := w.Resync(cancelled, "o"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
