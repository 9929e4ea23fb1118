package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"traklio/internal/core"
	"traklio/internal/report"
	"traklio/internal/store"
)

type summaryPayload struct {
	Today  core.Money     `json:"today"`
	Week   core.Money     `json:"week"`
	Month  core.Money     `json:"month"`
	Recent []core.Expense `json:"recent"`
}

type rankedCategory struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
	Icon  string     `json:"icon"`
	Color string     `json:"color"`
}

type themePayload struct {
	Theme string `json:"theme"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.Catalog())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if cached, ok := s.summaryCache.get(userID); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records := s.expenses.List(r.Context(), userID, "")
	today := core.Today()

	recent := records
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if recent == nil {
		recent = []core.Expense{}
	}

	payload := summaryPayload{
		Today:  report.TotalOn(records, today),
		Week:   report.TotalSince(records, today.WeekStart()),
		Month:  report.TotalSince(records, today.MonthStart()),
		Recent: recent,
	}
	s.summaryCache.set(userID, payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	window := queryInt(r, "window", 30)
	if window < 1 {
		writeError(w, http.StatusUnprocessableEntity, "window must be positive")
		return
	}

	records := s.expenses.List(r.Context(), userID, "")
	writeJSON(w, http.StatusOK, report.Insights(records, window))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	window := queryInt(r, "window", 30)
	if window < 1 {
		writeError(w, http.StatusUnprocessableEntity, "window must be positive")
		return
	}

	records := s.expenses.List(r.Context(), userID, "")
	writeJSON(w, http.StatusOK, report.DailySeries(records, window, core.Today()))
}

func (s *Server) handleCategoryRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 8)
	records := s.expenses.List(r.Context(), userID, "")

	ranked := make([]rankedCategory, 0)
	for _, ct := range report.TopCategories(records, limit) {
		entry := core.LookupCategory(ct.Name)
		ranked = append(ranked, rankedCategory{
			Name:  ct.Name,
			Total: ct.Total,
			Icon:  entry.Icon,
			Color: entry.Color,
		})
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		var theme string
		found, err := s.store.Get(r.Context(), store.KeyTheme, &theme)
		if err != nil {
			slog.ErrorContext(r.Context(), "Theme lookup failed",
				"request_id", requestIDFrom(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "theme lookup failed")
			return
		}
		if !found {
			theme = "light"
		}
		writeJSON(w, http.StatusOK, themePayload{Theme: theme})
	case http.MethodPut:
		var req themePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Theme != "light" && req.Theme != "dark" {
			writeError(w, http.StatusUnprocessableEntity, "theme must be light or dark")
			return
		}
		if err := s.store.Set(r.Context(), store.KeyTheme, req.Theme); err != nil {
			slog.ErrorContext(r.Context(), "Theme save failed",
				"request_id", requestIDFrom(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "theme save failed")
			return
		}
		writeJSON(w, http.StatusOK, req)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
