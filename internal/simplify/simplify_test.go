package simplify

import (
	"testing"

	"streetgraph/internal/graph"
)

// buildColinearChain is seed scenario 2: a bidirectional chain of four
// colinear nodes 1-2-3-4, where 2 and 3 are interstitial (degree 4,
// two neighbors) and 1, 4 are the only true endpoints.
func buildColinearChain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.SetGraphAttr("crs", "epsg:4326")
	g.SetGraphAttr("simplified", false)

	coords := map[string][2]float64{
		"1": {0, 0},
		"2": {0, 1},
		"3": {0, 2},
		"4": {0, 3},
	}
	for id, xy := range coords {
		g.AddNode(id, map[string]any{"x": xy[0], "y": xy[1]})
	}

	pairs := [][2]string{{"1", "2"}, {"2", "3"}, {"3", "4"}}
	for _, p := range pairs {
		u, v := p[0], p[1]
		if _, err := g.AddEdge(u, v, map[string]any{"length": 1.0, "highway": "residential"}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		if _, err := g.AddEdge(v, u, map[string]any{"length": 1.0, "highway": "residential"}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestSimplifyCollapsesColinearChain(t *testing.T) {
	g := buildColinearChain(t)

	if err := Simplify(g, DefaultOptions()); err != nil {
		t.Fatalf("Simplify: %v", err)
	}

	if g.NumNodes() != 2 {
		t.Fatalf("NumNodes = %d, want 2 (only endpoints 1 and 4 survive)", g.NumNodes())
	}
	if g.HasNode("2") || g.HasNode("3") {
		t.Error("interstitial nodes 2 and 3 should have been removed")
	}

	edges14 := g.EdgesBetween("1", "4")
	if len(edges14) != 1 {
		t.Fatalf("expected one collapsed edge 1->4, got %d", len(edges14))
	}
	if l, _ := edges14[0].Attrs["length"].(float64); l != 3.0 {
		t.Errorf("collapsed length = %v, want 3.0 (sum of three 1.0 segments)", l)
	}

	edges41 := g.EdgesBetween("4", "1")
	if len(edges41) != 1 {
		t.Fatalf("expected one collapsed edge 4->1, got %d", len(edges41))
	}

	merged, ok := edges14[0].Attrs["merged_edges"].([][2]string)
	if !ok || len(merged) != 3 {
		t.Errorf("merged_edges = %v, want 3 tracked pairs", edges14[0].Attrs["merged_edges"])
	}

	if v, _ := g.GraphAttr("simplified"); v != true {
		t.Errorf("simplified = %v, want true", v)
	}
}

func TestSimplifyAlreadySimplifiedErrors(t *testing.T) {
	g := buildColinearChain(t)
	g.SetGraphAttr("simplified", true)

	if err := Simplify(g, DefaultOptions()); err == nil {
		t.Error("Simplify on an already-simplified graph should error")
	}
}

func TestSimplifyStampsStreetCount(t *testing.T) {
	g := buildColinearChain(t)
	if err := Simplify(g, DefaultOptions()); err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	n := g.Node("1")
	if n == nil {
		t.Fatal("node 1 missing")
	}
	if _, ok := n.Attrs["street_count"]; !ok {
		t.Error("street_count should be stamped on surviving nodes after simplify")
	}
}

func TestEndpointPredicatePreservesIntersection(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, map[string]any{"x": 0.0, "y": 0.0})
	}
	// b is a true intersection: three distinct neighbors.
	g.AddEdge("a", "b", map[string]any{"length": 1.0})
	g.AddEdge("b", "a", map[string]any{"length": 1.0})
	g.AddEdge("b", "c", map[string]any{"length": 1.0})
	g.AddEdge("c", "b", map[string]any{"length": 1.0})
	g.AddEdge("b", "d", map[string]any{"length": 1.0})
	g.AddEdge("d", "b", map[string]any{"length": 1.0})

	if !endpointPredicate(g, "b") {
		t.Error("a node with three distinct neighbors must be an endpoint")
	}
}
