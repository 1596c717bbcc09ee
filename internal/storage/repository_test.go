package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensemate/internal/core"
	"expensemate/internal/store"
)

func openRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample(amount string, day int) core.NewTransaction {
	return core.NewTransaction{
		Amount:      amount,
		Category:    core.Grocery,
		Type:        core.Expense,
		Date:        time.Date(2024, 3, day, 18, 30, 0, 0, time.UTC),
		Description: "weekly shop",
	}
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	created, err := repo.Create(ctx, "me@example.com", sample("12,50", 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Amount != "12.5" {
		t.Errorf("amount = %q, want normalised 12.5", created.Amount)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != "me@example.com" || got.Category != core.Grocery || got.Type != core.Expense {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.Date.Equal(created.Date) {
		t.Errorf("date = %s, want %s", got.Date, created.Date)
	}
}

func TestSQLiteRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	for _, d := range []int{2, 20, 11} {
		if _, err := repo.Create(ctx, "o", sample("1", d)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	repo.Create(ctx, "other", sample("1", 1))

	list, err := repo.ListAll(ctx, "o")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Date.Day() != 20 || list[2].Date.Day() != 2 {
		t.Errorf("expected newest first, got %s .. %s", list[0].Date, list[2].Date)
	}
}

func TestSQLiteRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	rec, _ := repo.Create(ctx, "o", sample("3", 1))

	upd := sample("9", 2)
	upd.Description = "fixed"
	got, err := repo.Update(ctx, rec.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount != "9" || got.Description != "fixed" || got.Owner != "o" {
		t.Errorf("unexpected record %+v", got)
	}

	if _, err := repo.Update(ctx, "nope", upd); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestSQLiteRepositoryDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	repo.Create(ctx, "a", sample("1", 1))
	repo.Create(ctx, "b", sample("1", 1))

	if err := repo.DeleteAll(ctx, "a"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if list, _ := repo.ListAll(ctx, "a"); len(list) != 0 {
		t.Errorf("owner a has %d records", len(list))
	}
	if list, _ := repo.ListAll(ctx, "b"); len(list) != 1 {
		t.Errorf("owner b has %d records", len(list))
	}
}

func TestSQLiteRepositoryBudget(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	if b, err := repo.MonthlyBudget(ctx, "o"); err != nil || b.Valid {
		t.Fatalf("expected no budget, got %v err=%v", b, err)
	}
	if err := repo.SetMonthlyBudget(ctx, "o", decimal.RequireFromString("750.25")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetMonthlyBudget(ctx, "o", decimal.RequireFromString("800")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := repo.MonthlyBudget(ctx, "o")
	if err != nil || !b.Valid || !b.Decimal.Equal(decimal.RequireFromString("800")) {
		t.Fatalf("budget = %v err=%v", b, err)
	}
	if err := repo.RemoveMonthlyBudget(ctx, "o"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if b, _ := repo.MonthlyBudget(ctx, "o"); b.Valid {
		t.Errorf("budget should be cleared")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestSQLiteRepositoryListOrderOutsideNanosecondRange(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)

	years := []int{1500, 2024, 2500}
	for _, y := range years {
		n := sample("1", 1)
		n.Date = time.Date(y, 6, 1, 0, 0, 0, 0, time.UTC)
		if _, err := repo.Create(ctx, "o", n); err != nil {
			t.Fatalf("create %d: %v", y, err)
		}
	}

	list, err := repo.ListAll(ctx, "o")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []int{2500, 2024, 1500} {
		if got := list[i].Date.Year(); got != want {
			t.Errorf("list[%d] year = %d, want %d", i, got, want)
		}
	}
}
