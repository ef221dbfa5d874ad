package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"streetgraph/internal/graph"
)

func TestNewServerRoutesHealth(t *testing.T) {
	g := graph.New()
	g.AddNode("1", map[string]any{"x": 0.0, "y": 0.0})
	h := NewHandlers(g)

	cfg := DefaultConfig(":0")
	srv := NewServer(cfg, h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security header X-Content-Type-Options: nosniff")
	}
}

func TestNewServerCORSHeader(t *testing.T) {
	g := graph.New()
	h := NewHandlers(g)

	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://example.com"
	srv := NewServer(cfg, h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("CORS origin header = %q, want https://example.com", got)
	}
}

func TestNewServerConcurrencyLimit(t *testing.T) {
	g := graph.New()
	h := NewHandlers(g)

	cfg := DefaultConfig(":0")
	cfg.MaxConcurrent = 1
	srv := NewServer(cfg, h)

	sem := make(chan struct{}, 1)
	sem <- struct{}{} // saturate the semaphore capacity this test expects

	wrapped := withMiddleware(h.HandleHealth, sem, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	wrapped(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when the concurrency semaphore is saturated", rec.Code)
	}
	_ = srv
}
