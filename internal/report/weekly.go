package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensemate/internal/core"
)

// DaysInWeek is the number of buckets in a weekly series.
const DaysInWeek = 7

// DaySums holds the raw income and expense sums of one calendar day.
type DaySums struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// WeekSeries buckets a week of transactions by day. Days[0] is the week
// start and Days[6] the sixth day after it.
type WeekSeries struct {
	Start   time.Time
	Days    [DaysInWeek]DaySums
	Skipped []core.MalformedAmount
}

// BuildWeek sums txs into the seven days starting at the calendar day of
// weekStart. Transactions dated outside that window contribute nothing.
// weekStart is used as given; pass WeekStart(t) for a Monday anchor.
func BuildWeek(txs []core.Transaction, weekStart time.Time) WeekSeries {
	r := WeekRange(weekStart)
	series := WeekSeries{Start: r.Start}
	for i := range series.Days {
		series.Days[i] = DaySums{
			Date:    r.Start.AddDate(0, 0, i),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	loc := r.Start.Location()
	for _, tx := range txs {
		i := series.dayIndex(civilDay(tx.Date, loc))
		if i < 0 {
			continue
		}
		amount, ok := amountOf(tx, &series.Skipped)
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Income:
			series.Days[i].Income = series.Days[i].Income.Add(amount)
		case core.Expense:
			series.Days[i].Expense = series.Days[i].Expense.Add(amount)
		}
	}
	return series
}

func (s WeekSeries) dayIndex(day time.Time) int {
	for i := range s.Days {
		if s.Days[i].Date.Equal(day) {
			return i
		}
	}
	return -1
}

// Totals sums the seven buckets.
func (s WeekSeries) Totals() (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, d := range s.Days {
		income = income.Add(d.Income)
		expense = expense.Add(d.Expense)
	}
	return income, expense
}

// Floored returns a copy for charting in which every zero bucket is
// replaced by floor. The receiver is left untouched.
func (s WeekSeries) Floored(floor decimal.Decimal) WeekSeries {
	out := s
	out.Skipped = append([]core.MalformedAmount(nil), s.Skipped...)
	for i, d := range out.Days {
		if d.Income.IsZero() {
			out.Days[i].Income = floor
		}
		if d.Expense.IsZero() {
			out.Days[i].Expense = floor
		}
	}
	return out
}

// Label renders the week span, e.g. "Mar 4 - Mar 10".
func (s WeekSeries) Label() string {
	end := s.Start.AddDate(0, 0, DaysInWeek-1)
	return fmt.Sprintf("%s - %s", s.Start.Format("Jan 2"), end.Format("Jan 2"))
}

// Breakdown groups one transaction type of a week by category.
type Breakdown struct {
	Type    core.TxType
	Start   time.Time
	Amounts map[core.Category]decimal.Decimal
	Total   decimal.Decimal
	Skipped []core.MalformedAmount
}

// BuildBreakdown sums the txs of type typ dated in the seven days starting
// at weekStart, grouped by their raw category label.
func BuildBreakdown(txs []core.Transaction, weekStart time.Time, typ core.TxType) Breakdown {
	r := WeekRange(weekStart)
	b := Breakdown{
		Type:    typ,
		Start:   r.Start,
		Amounts: make(map[core.Category]decimal.Decimal),
		Total:   decimal.Zero,
	}
	for _, tx := range txs {
		if tx.Type != typ || !r.Contains(tx.Date) {
			continue
		}
		amount, ok := amountOf(tx, &b.Skipped)
		if !ok {
			continue
		}
		prev, seen := b.Amounts[tx.Category]
		if !seen {
			prev = decimal.Zero
		}
		b.Amounts[tx.Category] = prev.Add(amount)
		b.Total = b.Total.Add(amount)
	}
	return b
}

// IsEmpty reports whether no transaction matched.
func (b Breakdown) IsEmpty() bool {
	return len(b.Amounts) == 0
}

// Share is the fraction of the total contributed by c. It is 0 when c is
// absent or the total is zero.
func (b Breakdown) Share(c core.Category) float64 {
	amount, ok := b.Amounts[c]
	if !ok || b.Total.IsZero() {
		return 0
	}
	return amount.Div(b.Total).InexactFloat64()
}

// Entries lists the categories by descending amount, ties by name.
func (b Breakdown) Entries() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(b.Amounts))
	for c, amount := range b.Amounts {
		out = append(out, core.CategoryAmount{Category: c, Amount: amount, Share: b.Share(c)})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
