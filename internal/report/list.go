package report

import (
	"strings"

	"expensemate/internal/core"
)

// Search returns the transactions whose category, description or amount
// text contains query, ignoring case. A blank query matches everything.
func Search(txs []core.Transaction, query string) []core.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]core.Transaction(nil), txs...)
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(string(tx.Category)), q) ||
			strings.Contains(strings.ToLower(tx.Description), q) ||
			strings.Contains(tx.Amount, q) {
			out = append(out, tx)
		}
	}
	return out
}

// Recent returns at most n transactions from the front of txs, which the
// stores order newest first.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if len(txs) < n {
		n = len(txs)
	}
	return append([]core.Transaction(nil), txs[:n]...)
}
