package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensemate/internal/core"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.svc.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.String()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": out})
}

// handleListTransactions returns every transaction of the caller, or those
// matching q when it is set.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Search(r.Context(), s.owner(r), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]transactionJSON{"transactions": newTransactions(txs)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	n, ok := s.readTransaction(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Add(r.Context(), s.owner(r), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+tx.ID)
	writeJSON(w, http.StatusCreated, newTransaction(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	n, ok := s.readTransaction(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Update(r.Context(), s.owner(r), chi.URLParam(r, "id"), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransaction(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), s.owner(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAll(r.Context(), s.owner(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readTransaction decodes the body. On failure the error response has been
// written and ok is false.
func (s *Server) readTransaction(w http.ResponseWriter, r *http.Request) (n core.NewTransaction, ok bool) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return n, false
	}
	n, err := req.toNewTransaction(s.svc.Location())
	if err != nil {
		s.writeError(w, r, err)
		return n, false
	}
	return n, true
}
