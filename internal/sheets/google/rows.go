package google

import (
	"fmt"
	"strings"

	"expensemate/internal/core"
)

// Row layout: A id, B owner, C date, D type, E category, F amount, G description.
const lastColumn = "G"

func rowValues(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Owner,
		tx.Date.Format("2006-01-02"),
		string(tx.Type),
		string(tx.Category),
		tx.Amount,
		tx.Description,
	}
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}

// findRow returns the 1-based row whose first cell equals id, or 0.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) > 0 && cell(row, 0) == id {
			return i + 1
		}
	}
	return 0
}

// ownerRows returns the 1-based rows whose second cell equals owner.
func ownerRows(values [][]any, owner string) []int {
	var out []int
	for i, row := range values {
		if cell(row, 1) == owner {
			out = append(out, i+1)
		}
	}
	return out
}

func cell(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
