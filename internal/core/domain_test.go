package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Income", true},
		{"Expense", true},
		{" Expense ", true},
		{"income", false},
		{"Transfer", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseTxType(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestCategoryKnown(t *testing.T) {
	if len(Categories()) != 14 {
		t.Fatalf("expected 14 categories, got %d", len(Categories()))
	}
	if !Food.IsKnown() || !Others.IsKnown() {
		t.Fatalf("catalogue categories should be known")
	}
	if Category("Pets").IsKnown() {
		t.Fatalf("Pets should not be known")
	}
	if Category("Pets").Known() != Others {
		t.Fatalf("unknown category should collapse to Others")
	}
	if Travel.Known() != Travel {
		t.Fatalf("known category should be unchanged")
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{
		Amount:      "12.50",
		Category:    Food,
		Type:        Expense,
		Date:        time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		Description: "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = "0"
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount is non-negative, got %v", err)
	}

	bads := []struct {
		name  string
		mut   func(*NewTransaction)
		field string
		err   error
	}{
		{"empty amount", func(n *NewTransaction) { n.Amount = " " }, "amount", ErrEmptyAmount},
		{"non numeric amount", func(n *NewTransaction) { n.Amount = "abc" }, "amount", ErrInvalidAmount},
		{"negative amount", func(n *NewTransaction) { n.Amount = "-3" }, "amount", ErrNegativeAmount},
		{"empty description", func(n *NewTransaction) { n.Description = "" }, "description", ErrEmptyDescription},
		{"bad type", func(n *NewTransaction) { n.Type = "Transfer" }, "type", ErrInvalidType},
		{"empty category", func(n *NewTransaction) { n.Category = "" }, "category", ErrEmptyCategory},
		{"zero date", func(n *NewTransaction) { n.Date = time.Time{} }, "date", ErrZeroDate},
		{"date before range", func(n *NewTransaction) { n.Date = time.Date(0, 12, 31, 0, 0, 0, 0, time.UTC) }, "date", ErrDateOutOfRange},
		{"date after range", func(n *NewTransaction) { n.Date = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC) }, "date", ErrDateOutOfRange},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			n := good
			tc.mut(&n)
			err := n.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
			if !errors.Is(err, tc.err) {
				t.Errorf("err = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	n := NewTransaction{Amount: " 12,50 ", Category: " Food ", Description: "  coffee "}
	got := n.Normalize()
	if got.Amount != "12.5" {
		t.Errorf("amount = %q, want 12.5", got.Amount)
	}
	if got.Category != Food {
		t.Errorf("category = %q", got.Category)
	}
	if got.Description != "coffee" {
		t.Errorf("description = %q", got.Description)
	}
}
