package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensemate/internal/core"
	"expensemate/internal/store"
)

func newTx(amount string, day int) core.NewTransaction {
	return core.NewTransaction{
		Amount:      amount,
		Category:    core.Food,
		Type:        core.Expense,
		Date:        time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
		Description: "t",
	}
}

func TestMemoryStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, d := range []int{3, 9, 5} {
		if _, err := s.Create(ctx, "a@example.com", newTx("1", d)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.Create(ctx, "b@example.com", newTx("1", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ListAll(ctx, "a@example.com")
	if err != nil || len(got) != 3 {
		t.Fatalf("unexpected list: %v err=%v", got, err)
	}
	if got[0].Date.Day() != 9 || got[1].Date.Day() != 5 || got[2].Date.Day() != 3 {
		t.Fatalf("expected newest first, got %v, %v, %v", got[0].Date, got[1].Date, got[2].Date)
	}
	for _, r := range got {
		if r.ID == "" || r.Owner != "a@example.com" {
			t.Fatalf("unexpected record %+v", r)
		}
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Create(context.Background(), "o", newTx("-1", 1))
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestMemoryStoreUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec, _ := s.Create(ctx, "o", newTx("5", 1))

	upd := newTx("7,5", 2)
	upd.Type = core.Income
	got, err := s.Update(ctx, rec.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount != "7.5" || got.Type != core.Income || got.Owner != "o" {
		t.Fatalf("unexpected updated record %+v", got)
	}

	if _, err := s.Update(ctx, "missing", upd); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("deleting a missing id should be a no-op, got %v", err)
	}
}

func TestMemoryStoreDeleteAllScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Create(ctx, "a", newTx("1", 1))
	s.Create(ctx, "a", newTx("1", 2))
	s.Create(ctx, "b", newTx("1", 3))

	if err := s.DeleteAll(ctx, "a"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if got, _ := s.ListAll(ctx, "a"); len(got) != 0 {
		t.Fatalf("owner a should be empty, got %d", len(got))
	}
	if got, _ := s.ListAll(ctx, "b"); len(got) != 1 {
		t.Fatalf("owner b should be untouched, got %d", len(got))
	}
}

func TestMemoryStoreBudget(t *testing.T) {
	ctx := context.Background()
	s := New()

	b, err := s.MonthlyBudget(ctx, "o")
	if err != nil || b.Valid {
		t.Fatalf("expected no budget, got %v err=%v", b, err)
	}
	if err := s.SetMonthlyBudget(ctx, "o", decimal.RequireFromString("1000")); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, _ = s.MonthlyBudget(ctx, "o")
	if !b.Valid || !b.Decimal.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("unexpected budget %v", b)
	}
	if err := s.SetMonthlyBudget(ctx, "o", decimal.RequireFromString("-1")); err == nil {
		t.Fatalf("negative budget should be rejected")
	}
	if err := s.RemoveMonthlyBudget(ctx, "o"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if b, _ = s.MonthlyBudget(ctx, "o"); b.Valid {
		t.Fatalf("budget should be removed")
	}
}

func TestSeedKeepsMalformedAmounts(t *testing.T) {
	s := New()
	s.Seed(core.Transaction{Owner: "o", Amount: "abc", Type: core.Income, Date: time.Now()})
	got, _ := s.ListAll(context.Background(), "o")
	if len(got) != 1 || got[0].Amount != "abc" || got[0].ID == "" {
		t.Fatalf("unexpected seeded records %+v", got)
	}
}
