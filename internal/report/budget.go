package report

import "github.com/shopspring/decimal"

// BudgetStatus compares the month's spending against a configured ceiling.
// When Applicable is false no budget is configured and the other fields are
// zero; callers should not present budget information at all.
type BudgetStatus struct {
	Applicable bool
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Exceeded   bool
}

// EvaluateBudget derives the remaining amount and exceeded flag for
// monthExpense, which should be the expense total of the current calendar
// month (see Bounds with Month).
func EvaluateBudget(monthExpense decimal.Decimal, budget decimal.NullDecimal) BudgetStatus {
	if !budget.Valid {
		return BudgetStatus{}
	}
	return BudgetStatus{
		Applicable: true,
		Budget:     budget.Decimal,
		Spent:      monthExpense,
		Remaining:  budget.Decimal.Sub(monthExpense),
		Exceeded:   monthExpense.GreaterThan(budget.Decimal),
	}
}
