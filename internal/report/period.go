// Package report derives balances, budget status and weekly breakdowns from
// an in-memory transaction collection.
//
// Every function is a pure function of its arguments. The reference instant
// is always passed in; nothing here reads the clock. Calendar dates are
// taken in the location of the reference instant (or of the week start).
package report

import (
	"fmt"
	"time"

	"expensemate/internal/core"
)

// Filter selects a reporting period relative to a reference instant.
type Filter string

const (
	Today Filter = "today"
	Week  Filter = "week"
	Month Filter = "month"
	Year  Filter = "year"
)

// Filters lists the recognised filter keys in display order.
func Filters() []Filter {
	return []Filter{Today, Week, Month, Year}
}

// IsValid reports whether f is a recognised key. Unrecognised keys are not
// an error anywhere in this package; they select every transaction.
func (f Filter) IsValid() bool {
	_, ok := periodBounds[f]
	return ok
}

// Range is an inclusive span of calendar days. Start and End are both
// midnight of their day in the same location.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of t, read in the range's
// location, falls within the range.
func (r Range) Contains(t time.Time) bool {
	day := civilDay(t, r.Start.Location())
	return !day.Before(r.Start) && !day.After(r.End)
}

// periodBounds maps each filter key to the interval it selects around ref.
var periodBounds = map[Filter]func(ref time.Time) Range{
	Today: func(ref time.Time) Range {
		day := civilDay(ref, ref.Location())
		return Range{Start: day, End: day}
	},
	Week: func(ref time.Time) Range {
		start := WeekStart(ref)
		return Range{Start: start, End: start.AddDate(0, 0, 6)}
	},
	Month: func(ref time.Time) Range {
		y, m, _ := ref.Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		return Range{Start: start, End: start.AddDate(0, 1, -1)}
	},
	Year: func(ref time.Time) Range {
		y := ref.Year()
		return Range{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, ref.Location()),
			End:   time.Date(y, time.December, 31, 0, 0, 0, 0, ref.Location()),
		}
	},
}

// Bounds returns the interval selected by f around ref. ok is false for an
// unrecognised key, meaning no restriction applies.
func Bounds(f Filter, ref time.Time) (r Range, ok bool) {
	fn, ok := periodBounds[f]
	if !ok {
		return Range{}, false
	}
	return fn(ref), true
}

// Classify reports whether tx falls in the period f selects around ref.
func Classify(tx core.Transaction, f Filter, ref time.Time) bool {
	r, ok := Bounds(f, ref)
	if !ok {
		return true
	}
	return r.Contains(tx.Date)
}

// Apply returns the transactions that Classify accepts, preserving order.
// The input slice is not modified.
func Apply(txs []core.Transaction, f Filter, ref time.Time) []core.Transaction {
	r, ok := Bounds(f, ref)
	if !ok {
		return append([]core.Transaction(nil), txs...)
	}
	return Within(txs, r)
}

// Within returns the transactions dated inside r, preserving order.
func Within(txs []core.Transaction, r Range) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// FormatLabel renders a short description of the period f selects around
// ref, e.g. "4/3/2024", "4/3 - 10/3", "March 2024" or "2024".
func FormatLabel(f Filter, ref time.Time) string {
	r, ok := Bounds(f, ref)
	switch {
	case !ok, f == Today:
		return ref.Format("2/1/2006")
	case f == Week:
		return fmt.Sprintf("%s - %s", r.Start.Format("2/1"), r.End.Format("2/1"))
	case f == Month:
		return ref.Format("January 2006")
	default:
		return ref.Format("2006")
	}
}

// WeekStart returns midnight of the Monday starting the week that contains t.
func WeekStart(t time.Time) time.Time {
	day := civilDay(t, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekRange returns the seven calendar days starting at the day of start.
func WeekRange(start time.Time) Range {
	day := civilDay(start, start.Location())
	return Range{Start: day, End: day.AddDate(0, 0, 6)}
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
