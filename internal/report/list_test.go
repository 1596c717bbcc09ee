package report

import (
	"testing"

	"expensemate/internal/core"
)

func TestSearch(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Amount: "12.5", Category: core.Food, Description: "Lunch with Sam"},
		{ID: "2", Amount: "900", Category: core.Salary, Description: "March pay"},
		{ID: "3", Amount: "35", Category: core.Fuel, Description: "Tank"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"   ", []string{"1", "2", "3"}},
		{"food", []string{"1"}},
		{"LUNCH", []string{"1"}},
		{"90", []string{"2"}},
		{"5", []string{"1", "3"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got := Search(txs, tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestRecent(t *testing.T) {
	txs := make([]core.Transaction, 15)
	if got := len(Recent(txs, 10)); got != 10 {
		t.Errorf("Recent(15, 10) = %d", got)
	}
	if got := len(Recent(txs[:3], 10)); got != 3 {
		t.Errorf("Recent(3, 10) = %d", got)
	}
	if got := len(Recent(txs, -1)); got != 0 {
		t.Errorf("Recent(-1) = %d", got)
	}
}
