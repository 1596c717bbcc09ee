package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"expensemate/internal/core"
	applog "expensemate/internal/log"
	"expensemate/internal/middleware/security"
	"expensemate/internal/report"
	"expensemate/internal/services"
	"expensemate/internal/store"
)

// moneyJSON carries an amount both as an exact decimal string and in its
// display form.
type moneyJSON struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

func newMoney(d decimal.Decimal) moneyJSON {
	return moneyJSON{Value: d.String(), Display: core.FormatAmount(d)}
}

// rawMoney renders a stored amount. Malformed values are echoed verbatim.
func rawMoney(raw string) moneyJSON {
	d, err := core.ParseAmount(raw)
	if err != nil {
		return moneyJSON{Value: raw, Display: raw}
	}
	return moneyJSON{Value: raw, Display: core.FormatAmount(d)}
}

type transactionJSON struct {
	ID          string    `json:"id"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
}

func newTransaction(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Amount:      rawMoney(tx.Amount),
		Category:    tx.Category.String(),
		Type:        tx.Type.String(),
		Date:        tx.Date.Format(time.RFC3339),
		Description: tx.Description,
	}
}

func newTransactions(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = newTransaction(tx)
	}
	return out
}

type skippedJSON struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

type totalsJSON struct {
	Income  moneyJSON     `json:"income"`
	Expense moneyJSON     `json:"expense"`
	Balance moneyJSON     `json:"balance"`
	Skipped []skippedJSON `json:"skipped,omitempty"`
}

func newTotals(t core.Totals) totalsJSON {
	out := totalsJSON{
		Income:  newMoney(t.Income),
		Expense: newMoney(t.Expense),
		Balance: newMoney(t.Balance),
	}
	for _, m := range t.Skipped {
		out.Skipped = append(out.Skipped, skippedJSON{ID: m.ID, Amount: m.Amount})
	}
	return out
}

type budgetStatusJSON struct {
	Budget    moneyJSON `json:"budget"`
	Spent     moneyJSON `json:"spent"`
	Remaining moneyJSON `json:"remaining"`
	Exceeded  bool      `json:"exceeded"`
}

// newBudgetStatus is nil when no budget is configured.
func newBudgetStatus(b report.BudgetStatus) *budgetStatusJSON {
	if !b.Applicable {
		return nil
	}
	return &budgetStatusJSON{
		Budget:    newMoney(b.Budget),
		Spent:     newMoney(b.Spent),
		Remaining: newMoney(b.Remaining),
		Exceeded:  b.Exceeded,
	}
}

type dashboardJSON struct {
	Filter string            `json:"filter"`
	Label  string            `json:"label"`
	Totals totalsJSON        `json:"totals"`
	Budget *budgetStatusJSON `json:"budget"`
	Recent []transactionJSON `json:"recent"`
}

func newDashboard(d services.Dashboard) dashboardJSON {
	return dashboardJSON{
		Filter: string(d.Filter),
		Label:  d.Label,
		Totals: newTotals(d.Totals),
		Budget: newBudgetStatus(d.Budget),
		Recent: newTransactions(d.Recent),
	}
}

type balanceJSON struct {
	Totals       totalsJSON `json:"totals"`
	IncomeCount  int        `json:"income_count"`
	ExpenseCount int        `json:"expense_count"`
}

type dayJSON struct {
	Date    string    `json:"date"`
	Income  moneyJSON `json:"income"`
	Expense moneyJSON `json:"expense"`
}

type categoryShareJSON struct {
	Category string    `json:"category"`
	Amount   moneyJSON `json:"amount"`
	Share    float64   `json:"share"`
}

type weeklyJSON struct {
	Start     string              `json:"start"`
	Label     string              `json:"label"`
	Days      []dayJSON           `json:"days"`
	Income    moneyJSON           `json:"income"`
	Expense   moneyJSON           `json:"expense"`
	Type      string              `json:"type"`
	Total     moneyJSON           `json:"total"`
	Breakdown []categoryShareJSON `json:"breakdown"`
}

func newWeekly(w services.WeeklyReport) weeklyJSON {
	income, expense := w.Series.Totals()
	out := weeklyJSON{
		Start:     w.Series.Start.Format(dateLayout),
		Label:     w.Series.Label(),
		Days:      make([]dayJSON, 0, report.DaysInWeek),
		Income:    newMoney(income),
		Expense:   newMoney(expense),
		Type:      w.Breakdown.Type.String(),
		Total:     newMoney(w.Breakdown.Total),
		Breakdown: []categoryShareJSON{},
	}
	for _, d := range w.Series.Days {
		out.Days = append(out.Days, dayJSON{
			Date:    d.Date.Format(dateLayout),
			Income:  newMoney(d.Income),
			Expense: newMoney(d.Expense),
		})
	}
	for _, e := range w.Breakdown.Entries() {
		out.Breakdown = append(out.Breakdown, categoryShareJSON{
			Category: e.Category.String(),
			Amount:   newMoney(e.Amount),
			Share:    e.Share,
		})
	}
	return out
}

type budgetJSON struct {
	Budget *moneyJSON `json:"budget"`
}

func newBudget(b decimal.NullDecimal) budgetJSON {
	if !b.Valid {
		return budgetJSON{}
	}
	m := newMoney(b.Decimal)
	return budgetJSON{Budget: &m}
}

type errorJSON struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 422, unknown records to 404 and
// anything else to 500. Only 500s are logged here; the request log covers
// the rest.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorJSON{RequestID: middleware.GetReqID(r.Context())}

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		body.Error = verr.Err.Error()
		body.Field = verr.Field
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, store.ErrNotFound):
		body.Error = "transaction not found"
		writeJSON(w, http.StatusNotFound, body)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.NewFields().WithError(err).WithOwner(s.owner(r)).ToSlice()...)
		body.Error = "internal server error"
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, security.ClientIP(r), "limit", s.limiter.Limit())
	writeJSON(w, http.StatusTooManyRequests, errorJSON{
		Error:     "rate limit exceeded, retry later",
		RequestID: middleware.GetReqID(r.Context()),
	})
}
