package http

import (
	"net/http"
	"strings"
	"time"

	"gastos/internal/core"
)

type expenseView struct {
	Description string  `json:"desc"`
	Amount      float64 `json:"monto"`
	Formatted   string  `json:"montoFmt"`
	Category    string  `json:"categoria"`
	Icon        string  `json:"icono"`
	Type        string  `json:"tipo"`
	Date        string  `json:"fecha"`
	TS          int64   `json:"ts"`
}

func toView(e core.Expense) expenseView {
	return expenseView{
		Description: e.Description,
		Amount:      e.Amount.Colones(),
		Formatted:   "₡" + e.Amount.FormatColones(),
		Category:    e.Category,
		Icon:        core.Icon(e.Category),
		Type:        string(e.Type.OrVariable()),
		Date:        e.Date.UTC().Format(time.RFC3339),
		TS:          e.TS,
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w)
	if !ok {
		return
	}
	entries, err := s.expenses.List(r.Context(), user.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]expenseView, 0, len(entries))
	var total core.Money
	for _, e := range entries {
		views = append(views, toView(e))
		total.Cents += e.Amount.Cents
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": views,
		"total":    total.Colones(),
		"totalFmt": "₡" + total.FormatColones(),
	})
}

type createExpenseRequest struct {
	Description string `json:"desc"`
	Amount      string `json:"monto"`
	Category    string `json:"categoria"`
	Type        string `json:"tipo"`
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w)
	if !ok {
		return
	}
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), user, core.Expense{
		Description: strings.TrimSpace(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(req.Category),
		Type:        core.ExpenseType(req.Type),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toView(created))
}

type expenseIndexRequest struct {
	Index   int  `json:"index"`
	Confirm bool `json:"confirm"`
}

// handleEditExpense pulls the record out of the ledger and returns it for
// form editing. Resubmitting through create restores it; anything else
// loses it.
func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := s.currentUser(w)
	if !ok {
		return
	}
	var req expenseIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	taken, err := s.expenses.TakeForEdit(r.Context(), user.Username, req.Index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(taken))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := s.currentUser(w)
	if !ok {
		return
	}
	var req expenseIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deletion requires confirm=true"})
		return
	}

	if err := s.expenses.Delete(r.Context(), user, req.Index); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rep, err := s.reports.Build(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
