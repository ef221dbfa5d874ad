package routing

import (
	"math"

	"streetgraph/internal/graph"
)

// EdgeWeight reads the named numeric attribute off an edge, returning
// (value, true) only if present and finite. Edges with a missing or
// non-finite weight are skipped by the routing code; the skips are not
// logged.
func EdgeWeight(e *graph.Edge, attr string) (float64, bool) {
	v, ok := e.Attrs[attr]
	if !ok {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// minParallelWeight returns the minimum finite weightAttr across all
// parallel edges from u to v, and whether at least one such edge
// exists. This is the multigraph collapse rule used by both Dijkstra
// and Yen's algorithm: "collapse parallel edges by taking the minimum
// weight".
func minParallelWeight(g *graph.Graph, u, v, weightAttr string) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, e := range g.EdgesBetween(u, v) {
		w, ok := EdgeWeight(e, weightAttr)
		if !ok {
			continue
		}
		if w < best {
			best = w
			found = true
		}
	}
	return best, found
}
