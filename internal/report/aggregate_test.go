package report

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensemate/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if !got.Income.IsZero() || !got.Expense.IsZero() || !got.Balance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if len(got.Skipped) != 0 {
		t.Fatalf("expected no skipped records")
	}
}

func TestAggregate(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Amount: "100", Type: core.Income},
		{ID: "2", Amount: "40", Type: core.Expense},
		{ID: "3", Amount: "0.10", Type: core.Expense},
		{ID: "4", Amount: "0.20", Type: core.Expense},
		{ID: "5", Amount: "7", Type: core.TxType("Transfer")},
	}
	got := Aggregate(txs)
	if !got.Income.Equal(dec("100")) {
		t.Errorf("income = %s", got.Income)
	}
	if !got.Expense.Equal(dec("40.3")) {
		t.Errorf("expense = %s", got.Expense)
	}
	if !got.Balance.Equal(dec("59.7")) {
		t.Errorf("balance = %s", got.Balance)
	}
}

func TestAggregateNegativeBalance(t *testing.T) {
	got := Aggregate([]core.Transaction{
		{ID: "1", Amount: "10", Type: core.Income},
		{ID: "2", Amount: "25.5", Type: core.Expense},
	})
	if !got.Balance.Equal(dec("-15.5")) {
		t.Fatalf("balance = %s", got.Balance)
	}
}

func TestAggregateSkipsMalformedAmounts(t *testing.T) {
	txs := []core.Transaction{
		{ID: "ok", Amount: "10", Type: core.Income},
		{ID: "bad", Amount: "abc", Type: core.Income},
		{ID: "neg", Amount: "-5", Type: core.Expense},
		{ID: "ok2", Amount: "3", Type: core.Expense},
	}
	got := Aggregate(txs)
	if !got.Income.Equal(dec("10")) || !got.Expense.Equal(dec("3")) {
		t.Fatalf("totals = %s / %s", got.Income, got.Expense)
	}
	if len(got.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %d", len(got.Skipped))
	}
	if got.Skipped[0].ID != "bad" || !errors.Is(got.Skipped[0].Err, core.ErrInvalidAmount) {
		t.Errorf("unexpected first skipped: %+v", got.Skipped[0])
	}
	if got.Skipped[1].ID != "neg" || !errors.Is(got.Skipped[1].Err, core.ErrNegativeAmount) {
		t.Errorf("unexpected second skipped: %+v", got.Skipped[1])
	}
}

func TestAggregateBalanceIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		txs := randomTransactions(rng, rng.Intn(40))
		got := Aggregate(txs)
		if !got.Balance.Equal(got.Income.Sub(got.Expense)) {
			t.Fatalf("round %d: balance %s != %s - %s", round, got.Balance, got.Income, got.Expense)
		}
	}
}

func TestCounts(t *testing.T) {
	in, out := Counts([]core.Transaction{
		{Type: core.Income}, {Type: core.Expense}, {Type: core.Expense},
	})
	if in != 1 || out != 2 {
		t.Fatalf("counts = %d/%d", in, out)
	}
}

func randomTransactions(rng *rand.Rand, n int) []core.Transaction {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cats := core.Categories()
	out := make([]core.Transaction, n)
	for i := range out {
		typ := core.Income
		if rng.Intn(2) == 0 {
			typ = core.Expense
		}
		amount := fmt.Sprintf("%d.%02d", rng.Intn(1000), rng.Intn(100))
		if rng.Intn(15) == 0 {
			amount = "n/a"
		}
		out[i] = core.Transaction{
			ID:       fmt.Sprintf("tx-%d", i),
			Amount:   amount,
			Type:     typ,
			Category: cats[rng.Intn(len(cats))],
			Date:     base.Add(time.Duration(rng.Intn(21*24)) * time.Hour),
		}
	}
	return out
}
