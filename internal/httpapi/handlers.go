package httpapi

import (
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"streetgraph/internal/graph"
	"streetgraph/internal/routing"
	"streetgraph/internal/spatial"
	"streetgraph/internal/stats"
	"streetgraph/internal/xerrors"
)

// Handlers holds the HTTP handlers and their graph dependency. The
// graph and its spatial index are treated as an immutable snapshot:
// concurrent read-only queries against them are safe.
type Handlers struct {
	g     *graph.Graph
	index *spatial.Index
}

// NewHandlers creates handlers serving g, indexed once at startup.
func NewHandlers(g *graph.Graph) *Handlers {
	return &Handlers{g: g, index: spatial.Build(g)}
}

func (h *Handlers) snap(ll LatLngJSON) (string, bool) {
	id, _, ok := h.index.NearestNode(ll.Lng, ll.Lat)
	return id, ok
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	origin, ok := h.snap(req.Start)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "start")
		return
	}
	dest, ok := h.snap(req.End)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "end")
		return
	}

	nodes, cost, err := routing.ShortestPath(h.g, origin, dest, req.WeightAttr)
	if err != nil {
		if errors.Is(err, xerrors.ErrNoPath) {
			writeError(w, http.StatusNotFound, "no_route_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RouteResponse{TotalCost: cost, NodeIDs: nodes})
}

// HandleKRoutes handles POST /api/v1/routes.
func (h *Handlers) HandleKRoutes(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req KRouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if req.K <= 0 {
		req.K = 1
	}
	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	origin, ok := h.snap(req.Start)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "start")
		return
	}
	dest, ok := h.snap(req.End)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "end")
		return
	}

	paths := routing.KShortestPaths(h.g, origin, dest, req.WeightAttr, req.K)
	resp := KRouteResponse{}
	for _, p := range paths {
		resp.Paths = append(resp.Paths, PathJSON{Cost: p.Cost, NodeIDs: p.Nodes})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	circuity, _ := stats.CircuityAvg(h.g)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		StatsResponse
		CircuityAvg float64 `json:"circuity_avg"`
	}{
		StatsResponse: StatsResponse{
			NumNodes:          h.g.NumNodes(),
			NumEdges:          h.g.NumEdges(),
			EdgeLengthTotal:   stats.EdgeLengthTotal(h.g),
			IntersectionCount: stats.IntersectionCount(h.g, 2),
		},
		CircuityAvg: circuity,
	})
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
