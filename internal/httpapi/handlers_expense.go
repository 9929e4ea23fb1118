package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"traklio/internal/core"
)

type createExpenseRequest struct {
	Amount         string `json:"amount"`
	Category       string `json:"category"`
	CustomCategory string `json:"customCategory"`
	Description    string `json:"description"`
	Date           string `json:"date"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

type bulkDeleteResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	records := s.expenses.List(r.Context(), userID, r.URL.Query().Get("q"))
	if records == nil {
		records = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	date := core.Day(req.Date)
	if req.Date == "" {
		date = core.Today()
	}

	created, err := s.expenses.Create(r.Context(), userID, amount, req.Category, req.CustomCategory, req.Description, date)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	s.summaryCache.invalidate(userID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	if err := s.expenses.Delete(r.Context(), userID, id); err != nil {
		slog.ErrorContext(r.Context(), "Delete expense failed",
			"request_id", requestIDFrom(r.Context()), "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	s.summaryCache.invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		removed int
		err     error
	)
	if req.All {
		removed, err = s.expenses.DeleteAll(r.Context(), userID)
	} else {
		removed, err = s.expenses.DeleteMany(r.Context(), userID, req.IDs)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Bulk delete failed",
			"request_id", requestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	s.summaryCache.invalidate(userID)
	writeJSON(w, http.StatusOK, bulkDeleteResponse{Removed: removed})
}
