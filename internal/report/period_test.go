package report

import (
	"testing"
	"time"

	"expensemate/internal/core"
)

func txOn(t time.Time) core.Transaction {
	return core.Transaction{ID: "x", Amount: "1", Type: core.Expense, Category: core.Food, Date: t}
}

func TestClassify(t *testing.T) {
	// Wednesday 6 March 2024, mid-afternoon
	ref := time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter Filter
		date   time.Time
		want   bool
	}{
		{"today same day early", Today, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), true},
		{"today same day late", Today, time.Date(2024, 3, 6, 23, 59, 59, 0, time.UTC), true},
		{"today day before", Today, time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC), false},
		{"today day after", Today, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), false},

		{"week monday", Week, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"week sunday evening", Week, time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC), true},
		{"week previous sunday", Week, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), false},
		{"week next monday", Week, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), false},

		{"month first day", Month, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"month last day", Month, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), true},
		{"month previous", Month, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), false},
		{"month next", Month, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), false},

		{"year jan 1", Year, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"year dec 31", Year, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), true},
		{"year previous", Year, time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), false},

		{"unknown key passes", Filter("decade"), time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"empty key passes", Filter(""), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(txOn(tt.date), tt.filter, ref); got != tt.want {
				t.Errorf("Classify(%s, %s) = %v, want %v", tt.date, tt.filter, got, tt.want)
			}
		})
	}
}

func TestClassifyUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	ref := time.Date(2024, 3, 6, 9, 0, 0, 0, loc)

	// 20:00 UTC on the 5th is 02:00 on the 6th at UTC+6
	tx := txOn(time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC))
	if !Classify(tx, Today, ref) {
		t.Fatalf("transaction should fall on the reference day in the reference location")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	ref := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	r, ok := Bounds(Month, ref)
	if !ok {
		t.Fatal("month should be recognised")
	}
	if r.Start.Day() != 1 || r.End.Day() != 29 {
		t.Errorf("leap February bounds = %s..%s", r.Start, r.End)
	}

	if _, ok := Bounds(Filter("all"), ref); ok {
		t.Error("unknown key should not produce bounds")
	}
	if Filter("all").IsValid() || !Week.IsValid() {
		t.Error("IsValid mismatch")
	}
}

func TestApply(t *testing.T) {
	ref := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		txOn(time.Date(2024, 3, 6, 1, 0, 0, 0, time.UTC)),
		txOn(time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)),
		txOn(time.Date(2023, 3, 6, 1, 0, 0, 0, time.UTC)),
	}

	if got := len(Apply(txs, Today, ref)); got != 1 {
		t.Errorf("today: got %d", got)
	}
	if got := len(Apply(txs, Month, ref)); got != 2 {
		t.Errorf("month: got %d", got)
	}
	if got := len(Apply(txs, Filter("bogus"), ref)); got != 3 {
		t.Errorf("unknown: got %d", got)
	}
	if len(txs) != 3 {
		t.Error("input must not be modified")
	}
}

func TestFormatLabel(t *testing.T) {
	ref := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		filter Filter
		want   string
	}{
		{Today, "6/3/2024"},
		{Week, "4/3 - 10/3"},
		{Month, "March 2024"},
		{Year, "2024"},
		{Filter("other"), "6/3/2024"},
	}
	for _, tt := range tests {
		if got := FormatLabel(tt.filter, ref); got != tt.want {
			t.Errorf("FormatLabel(%s) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}
