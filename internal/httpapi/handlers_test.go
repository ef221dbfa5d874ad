package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"streetgraph/internal/graph"
)

func threeNodeLine(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.SetGraphAttr("crs", "epsg:4326")
	g.AddNode("1", map[string]any{"x": 103.0, "y": 1.0})
	g.AddNode("2", map[string]any{"x": 103.001, "y": 1.0})
	g.AddNode("3", map[string]any{"x": 103.002, "y": 1.0})
	g.AddEdge("1", "2", map[string]any{"length": 100.0})
	g.AddEdge("2", "1", map[string]any{"length": 100.0})
	g.AddEdge("2", "3", map[string]any{"length": 100.0})
	g.AddEdge("3", "2", map[string]any{"length": 100.0})
	return g
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleRouteSuccess(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	body := `{"start":{"lat":1.0,"lng":103.0},"end":{"lat":1.0,"lng":103.002}}`

	rec := postJSON(h.HandleRoute, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var resp RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.NodeIDs) != 3 || resp.NodeIDs[0] != "1" || resp.NodeIDs[2] != "3" {
		t.Errorf("NodeIDs = %v, want [1 2 3]", resp.NodeIDs)
	}
}

func TestHandleRouteRejectsNonJSON(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/route", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.HandleRoute(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleRouteInvalidCoordinates(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	body := `{"start":{"lat":999,"lng":103.0},"end":{"lat":1.0,"lng":103.002}}`
	rec := postJSON(h.HandleRoute, body)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleRouteNoPath(t *testing.T) {
	g := threeNodeLine(t)
	g.AddNode("island", map[string]any{"x": 110.0, "y": 10.0})
	h := NewHandlers(g)

	body := `{"start":{"lat":1.0,"lng":103.0},"end":{"lat":10.0,"lng":110.0}}`
	rec := postJSON(h.HandleRoute, body)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleKRoutesDefaultsKToOne(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	body := `{"start":{"lat":1.0,"lng":103.0},"end":{"lat":1.0,"lng":103.002}}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleKRoutes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp KRouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Paths) != 1 {
		t.Errorf("got %d paths, want 1 (default k)", len(resp.Paths))
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %s, want ok", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	h := NewHandlers(threeNodeLine(t))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		StatsResponse
		CircuityAvg float64 `json:"circuity_avg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NumNodes != 3 {
		t.Errorf("num_nodes = %d, want 3", resp.NumNodes)
	}
}

func TestValidateCoord(t *testing.T) {
	if err := validateCoord(LatLngJSON{Lat: 1, Lng: 103}); err != nil {
		t.Errorf("validateCoord valid point errored: %v", err)
	}
	if err := validateCoord(LatLngJSON{Lat: 200, Lng: 0}); err == nil {
		t.Error("validateCoord should reject out-of-range latitude")
	}
}
