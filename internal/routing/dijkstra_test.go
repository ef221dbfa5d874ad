package routing

import (
	"math"
	"testing"

	"streetgraph/internal/graph"
)

func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range []string{"s", "a", "b", "t"} {
		g.AddNode(n, nil)
	}
	g.AddEdge("s", "a", map[string]any{"length": 1.0})
	g.AddEdge("a", "t", map[string]any{"length": 2.0})
	g.AddEdge("s", "b", map[string]any{"length": 2.0})
	g.AddEdge("b", "t", map[string]any{"length": 1.0})
	g.AddEdge("s", "t", map[string]any{"length": 10.0})
	return g
}

func TestShortestPathDiamond(t *testing.T) {
	g := diamondGraph(t)
	path, cost, err := ShortestPath(g, "s", "t", "")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if cost != 3.0 {
		t.Errorf("cost = %v, want 3.0", cost)
	}
	if len(path) != 3 || path[0] != "s" || path[2] != "t" {
		t.Errorf("path = %v, want a 3-node path from s to t", path)
	}
}

func TestShortestPathNoRoute(t *testing.T) {
	g := graph.New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	_, _, err := ShortestPath(g, "a", "b", "")
	if err == nil {
		t.Error("ShortestPath between disconnected nodes should error")
	}
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := graph.New()
	g.AddNode("a", nil)
	if _, _, err := ShortestPath(g, "a", "ghost", ""); err == nil {
		t.Error("ShortestPath to an unknown node should error")
	}
}

func TestShortestPathCollapsesParallelEdges(t *testing.T) {
	g := graph.New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddEdge("a", "b", map[string]any{"length": 5.0})
	g.AddEdge("a", "b", map[string]any{"length": 1.0})

	_, cost, err := ShortestPath(g, "a", "b", "")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if cost != 1.0 {
		t.Errorf("cost = %v, want 1.0 (min of parallel edges)", cost)
	}
}

func TestSingleSourceDijkstraDistances(t *testing.T) {
	g := diamondGraph(t)
	dist, _ := SingleSourceDijkstra(g, "s", "")
	if math.Abs(dist["t"]-3.0) > 1e-9 {
		t.Errorf("dist[t] = %v, want 3.0", dist["t"])
	}
	if dist["a"] != 1.0 {
		t.Errorf("dist[a] = %v, want 1.0", dist["a"])
	}
}

func TestVectorizedShortestPathMismatchedLengths(t *testing.T) {
	g := diamondGraph(t)
	_, _, errs := VectorizedShortestPath(g, []string{"s"}, []string{"t", "a"}, "")
	if errs[0] == nil {
		t.Error("mismatched origin/destination slice lengths should error")
	}
}
