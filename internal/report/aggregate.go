package report

import (
	"github.com/shopspring/decimal"

	"expensemate/internal/core"
)

// Aggregate sums income and expense amounts over txs.
//
// Records whose amount does not parse to a non-negative decimal contribute
// to neither total and are listed in Totals.Skipped instead. Records with a
// type other than Income or Expense are ignored.
func Aggregate(txs []core.Transaction) core.Totals {
	totals := core.Totals{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, tx := range txs {
		amount, ok := amountOf(tx, &totals.Skipped)
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Income:
			totals.Income = totals.Income.Add(amount)
		case core.Expense:
			totals.Expense = totals.Expense.Add(amount)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expense)
	return totals
}

// Counts returns how many records of each type txs holds.
func Counts(txs []core.Transaction) (income, expense int) {
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income++
		case core.Expense:
			expense++
		}
	}
	return income, expense
}

// amountOf parses the amount of tx, recording it in skipped on failure.
func amountOf(tx core.Transaction, skipped *[]core.MalformedAmount) (decimal.Decimal, bool) {
	amount, err := core.ParseAmount(tx.Amount)
	if err != nil {
		*skipped = append(*skipped, core.MalformedAmount{ID: tx.ID, Amount: tx.Amount, Err: err})
		return decimal.Zero, false
	}
	return amount, true
}
