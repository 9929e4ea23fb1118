// Package httpapi exposes Traklio's flows as a JSON API for an external
// renderer. It carries no business logic: handlers translate requests
// into calls against the auth manager, expense service and aggregation
// engine and encode their results.
package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"traklio/internal/auth"
	"traklio/internal/services"
	"traklio/internal/store"
)

type Server struct {
	http.Server

	auth     *auth.Manager
	expenses *services.ExpenseService
	store    store.Store

	rateLimiter  *rateLimiter
	summaryCache *summaryCache

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, am *auth.Manager, es *services.ExpenseService, st store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:         am,
		expenses:     es,
		store:        st,
		rateLimiter:  newRateLimiter(60, time.Minute),
		summaryCache: newSummaryCache(5 * time.Minute),
		stopCleanup:  make(chan struct{}),
	}
	go s.runCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/signup", s.guard(s.handleSignup))
	mux.HandleFunc("/api/login", s.guard(s.handleLogin))
	mux.HandleFunc("/api/logout", s.guard(s.handleLogout))
	mux.HandleFunc("/api/session", s.guard(s.handleSession))
	mux.HandleFunc("/api/profile", s.guard(s.handleProfile))
	mux.HandleFunc("/api/password", s.guard(s.handlePassword))

	mux.HandleFunc("/api/expenses", s.guard(s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.guard(s.handleExpenseByID))
	mux.HandleFunc("/api/expenses:bulk-delete", s.guard(s.handleBulkDelete))

	mux.HandleFunc("/api/catalog", s.guard(s.handleCatalog))
	mux.HandleFunc("/api/dashboard/summary", s.guard(s.handleSummary))
	mux.HandleFunc("/api/analytics/insights", s.guard(s.handleInsights))
	mux.HandleFunc("/api/analytics/series", s.guard(s.handleSeries))
	mux.HandleFunc("/api/analytics/categories", s.guard(s.handleCategoryRanking))

	mux.HandleFunc("/api/theme", s.guard(s.handleTheme))

	return s
}

// guard adds security headers, rate limiting on mutating methods,
// request ids and request logging.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := newRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// requireUser resolves the active session or answers 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, err := s.auth.Current(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return "", false
	}
	return session.ID, true
}

// runCleanup periodically drops stale rate-limiter clients and expired
// cache entries.
func (s *Server) runCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.rateLimiter.cleanup()
			if n := s.summaryCache.cleanExpired(); n > 0 {
				slog.Debug("Summary cache cleanup", "entries_removed", n)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

// requestIDFrom returns the id guard stored for this request, or ""
// outside the middleware chain. Handlers attach it to error logs so a
// failure line can be matched to its completion line.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
