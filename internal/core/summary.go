package core

import "github.com/shopspring/decimal"

// MalformedAmount describes a record left out of a sum because its amount
// could not be parsed.
type MalformedAmount struct {
	ID     string
	Amount string
	Err    error
}

// Totals is the income/expense reduction of a set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
	Skipped []MalformedAmount
}

// CategoryAmount represents an amount aggregated by category label.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
	Share    float64
}
