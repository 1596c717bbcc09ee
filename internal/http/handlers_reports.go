package http

import (
	"net/http"
	"strings"
	"time"

	"expensemate/internal/core"
	"expensemate/internal/report"
)

// defaultFilter is used when the dashboard request names none.
const defaultFilter = report.Today

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"timestamp":           time.Now().Format(time.RFC3339),
		"uptime":              time.Since(s.started).Round(time.Second).String(),
		"rate_limit_clients":  s.limiter.ActiveClients(),
		"suspicious_requests": s.detector.Flagged(),
	})
}

// handleDashboard accepts any filter key; unknown keys cover all records.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter := report.Filter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter"))))
	if filter == "" {
		filter = defaultFilter
	}
	d, err := s.svc.Dashboard(r.Context(), s.owner(r), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboard(d))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Balance(r.Context(), s.owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSON{
		Totals:       newTotals(b.Totals),
		IncomeCount:  b.IncomeCount,
		ExpenseCount: b.ExpenseCount,
	})
}

// handleWeekly reports on the week starting at ?start (YYYY-MM-DD, current
// Monday when absent) for ?type (Expense when absent).
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var start time.Time
	if v := strings.TrimSpace(q.Get("start")); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, s.svc.Location())
		if err != nil {
			s.writeError(w, r, &core.ValidationError{Field: "start", Err: errInvalidDate})
			return
		}
		start = t
	}

	typ := core.Expense
	if v := q.Get("type"); v != "" {
		parsed, err := core.ParseTxType(v)
		if err != nil {
			s.writeError(w, r, &core.ValidationError{Field: "type", Err: err})
			return
		}
		typ = parsed
	}

	rep, err := s.svc.Weekly(r.Context(), s.owner(r), start, typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeekly(rep))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Budget(r.Context(), s.owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudget(b))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := s.svc.SetBudget(r.Context(), s.owner(r), string(req.Amount))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m := newMoney(amount)
	writeJSON(w, http.StatusOK, budgetJSON{Budget: &m})
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveBudget(r.Context(), s.owner(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
