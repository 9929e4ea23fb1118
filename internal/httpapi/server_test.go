package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"traklio/internal/auth"
	"traklio/internal/core"
	"traklio/internal/services"
	"traklio/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.NewMemory()
	am := auth.NewManager(st, auth.DefaultTimeout)
	es := services.NewExpenseService(st, nil)
	srv := NewServer(":0", am, es, st)
	t.Cleanup(func() {
		ctx, cancel := testContext(t)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	})
	return srv
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func signupDemo(t *testing.T, srv *Server) {
	t.Helper()
	rr := do(srv, http.MethodPost, "/api/signup",
		`{"name":"Demo","email":"demo@test.com","password":"demo123","confirmPassword":"demo123"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/api/session", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	signupDemo(t, srv)

	rr = do(srv, http.MethodGet, "/api/session", "")
	if rr.Code != 200 {
		t.Fatalf("session status=%d", rr.Code)
	}
	var session core.SessionUser
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Email != "demo@test.com" || session.ID == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	rr = do(srv, http.MethodPost, "/api/logout", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("logout status=%d", rr.Code)
	}
	rr = do(srv, http.MethodGet, "/api/session", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}

	rr = do(srv, http.MethodPost, "/api/login", `{"email":"demo@test.com","password":"demo123"}`)
	if rr.Code != 200 {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(srv, http.MethodPost, "/api/login", `{"email":"demo@test.com","password":"nope"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rr.Code)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	// Wrong method
	rr := do(srv, http.MethodPut, "/api/expenses", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount
	rr = do(srv, http.MethodPost, "/api/expenses",
		`{"amount":"abc","category":"Food","description":"Lunch"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad amount, got %d", rr.Code)
	}

	// Missing description
	rr = do(srv, http.MethodPost, "/api/expenses",
		`{"amount":"12.50","category":"Food","description":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty description, got %d", rr.Code)
	}

	// Success, date defaults to today
	rr = do(srv, http.MethodPost, "/api/expenses",
		`{"amount":"12.50","category":"Food","description":"Lunch"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Amount.Cents != 1250 || created.Date != core.Today() {
		t.Fatalf("unexpected expense %+v", created)
	}

	rr = do(srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", listed)
	}

	rr = do(srv, http.MethodGet, "/api/expenses?q=dinner", "")
	var filtered []core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("expected empty result for non-matching query, got %+v", filtered)
	}

	rr = do(srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = do(srv, http.MethodGet, "/api/expenses", "")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty list after delete, got %s", body)
	}
}

func TestBulkDelete(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		rr := do(srv, http.MethodPost, "/api/expenses",
			fmt.Sprintf(`{"amount":"%d.00","category":"Food","description":"Meal %d"}`, i+1, i))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d", rr.Code)
		}
		var e core.Expense
		if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, e.ID)
	}

	body, _ := json.Marshal(bulkDeleteRequest{IDs: ids[:2]})
	rr := do(srv, http.MethodPost, "/api/expenses:bulk-delete", string(body))
	if rr.Code != 200 {
		t.Fatalf("bulk delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp bulkDeleteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Removed != 2 {
		t.Fatalf("removed=%d, want 2", resp.Removed)
	}

	rr = do(srv, http.MethodPost, "/api/expenses:bulk-delete", `{"all":true}`)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Removed != 1 {
		t.Fatalf("removed=%d, want 1", resp.Removed)
	}
}

func TestDashboardSummary(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	for _, amount := range []string{"10.00", "5.00"} {
		rr := do(srv, http.MethodPost, "/api/expenses",
			`{"amount":"`+amount+`","category":"Food","description":"Meal"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d", rr.Code)
		}
	}

	rr := do(srv, http.MethodGet, "/api/dashboard/summary", "")
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var payload summaryPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if payload.Today.Cents != 1500 || payload.Month.Cents != 1500 {
		t.Fatalf("unexpected totals %+v", payload)
	}
	if len(payload.Recent) != 2 {
		t.Fatalf("recent=%d, want 2", len(payload.Recent))
	}

	// Cached payload survives a direct store write until invalidated.
	if _, ok := srv.summaryCache.get(getSessionID(t, srv)); !ok {
		t.Fatalf("expected summary to be cached")
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	rr := do(srv, http.MethodPost, "/api/expenses",
		`{"amount":"100.00","category":"Food","description":"Groceries run"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/api/analytics/series?window=30", "")
	if rr.Code != 200 {
		t.Fatalf("series status=%d", rr.Code)
	}
	var series []struct {
		Day   core.Day   `json:"day"`
		Total core.Money `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series) != 30 {
		t.Fatalf("series length=%d, want 30", len(series))
	}
	if series[29].Day != core.Today() || series[29].Total.Cents != 10000 {
		t.Fatalf("unexpected last point %+v", series[29])
	}

	rr = do(srv, http.MethodGet, "/api/analytics/insights", "")
	var summary struct {
		Total core.Money `json:"total"`
		Count int        `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if summary.Total.Cents != 10000 || summary.Count != 1 {
		t.Fatalf("unexpected insights %+v", summary)
	}

	rr = do(srv, http.MethodGet, "/api/analytics/insights?window=0", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for zero window, got %d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/api/analytics/categories", "")
	var ranked []rankedCategory
	if err := json.Unmarshal(rr.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("decode ranking: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Name != "Food" || ranked[0].Icon == "" {
		t.Fatalf("unexpected ranking %+v", ranked)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	rr := do(srv, http.MethodGet, "/api/catalog", "")
	if rr.Code != 200 {
		t.Fatalf("catalog status=%d", rr.Code)
	}
	var catalog []core.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog) != 10 {
		t.Fatalf("catalog size=%d, want 10", len(catalog))
	}
}

func TestThemeRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	signupDemo(t, srv)

	rr := do(srv, http.MethodGet, "/api/theme", "")
	if !strings.Contains(rr.Body.String(), "light") {
		t.Fatalf("expected default light theme, got %s", rr.Body.String())
	}

	rr = do(srv, http.MethodPut, "/api/theme", `{"theme":"dark"}`)
	if rr.Code != 200 {
		t.Fatalf("theme put status=%d", rr.Code)
	}
	rr = do(srv, http.MethodPut, "/api/theme", `{"theme":"blue"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown theme, got %d", rr.Code)
	}
	rr = do(srv, http.MethodGet, "/api/theme", "")
	if !strings.Contains(rr.Body.String(), "dark") {
		t.Fatalf("expected dark theme, got %s", rr.Body.String())
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/api/catalog", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options=%q", got)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := newTestServer(t)

	// httptest requests share one RemoteAddr, so 61 mutations from the
	// same client exhaust the default 60-per-minute budget.
	for i := 0; i < 60; i++ {
		rr := do(srv, http.MethodPost, "/api/login", `{"email":"a@b.c","password":"x"}`)
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited before the budget ran out", i+1)
		}
	}
	rr := do(srv, http.MethodPost, "/api/login", `{"email":"a@b.c","password":"x"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting budget, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After=%q", rr.Header().Get("Retry-After"))
	}

	// Reads are never limited.
	rr = do(srv, http.MethodGet, "/api/session", "")
	if rr.Code == http.StatusTooManyRequests {
		t.Fatalf("read request was rate limited")
	}
}

func TestRequestIDReachesHandlers(t *testing.T) {
	srv := newTestServer(t)

	var seen string
	h := srv.guard(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/any", nil))

	if seen == "" {
		t.Fatalf("handler saw no request id in context")
	}
	if got := rr.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("header id %q != context id %q", got, seen)
	}
	if requestIDFrom(context.Background()) != "" {
		t.Fatalf("expected empty id outside the middleware chain")
	}
}

func getSessionID(t *testing.T, srv *Server) string {
	t.Helper()
	rr := do(srv, http.MethodGet, "/api/session", "")
	var session core.SessionUser
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session.ID
}

func testContext(t *testing.T) (ctx context.Context, cancel context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}
