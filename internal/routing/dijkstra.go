package routing

import (
	"math"

	"streetgraph/internal/graph"
	"streetgraph/internal/xerrors"
)

// DefaultWeightAttr is used when callers don't name an edge-weight
// attribute.
const DefaultWeightAttr = "length"

// ShortestPath runs single-pair Dijkstra over g from origin to
// destination under edge-weight attribute weightAttr (DefaultWeightAttr
// if empty), collapsing parallel edges between the same ordered pair
// to their minimum weight. Returns the node sequence [origin,...,dest]
// and its total cost, or xerrors.ErrNoPath if destination is
// unreachable.
func ShortestPath(g *graph.Graph, origin, destination, weightAttr string) ([]string, float64, error) {
	if weightAttr == "" {
		weightAttr = DefaultWeightAttr
	}
	if !g.HasNode(origin) || !g.HasNode(destination) {
		return nil, 0, xerrors.ErrNoPath
	}
	dist, prev := singleSourceDijkstra(g, origin, weightAttr, destination)
	d, ok := dist[destination]
	if !ok || math.IsInf(d, 1) {
		return nil, 0, xerrors.ErrNoPath
	}
	return reconstructPath(prev, origin, destination), d, nil
}

// SingleSourceDijkstra exposes the all-destinations shortest-distance
// map from source, used by distance-based truncation (C6). It always
// runs to exhaustion; there is no early-stop target.
func SingleSourceDijkstra(g *graph.Graph, source, weightAttr string) (dist map[string]float64, prev map[string]string) {
	if weightAttr == "" {
		weightAttr = DefaultWeightAttr
	}
	return singleSourceDijkstra(g, source, weightAttr, "")
}

func singleSourceDijkstra(g *graph.Graph, source, weightAttr, target string) (map[string]float64, map[string]string) {
	dist := make(map[string]float64)
	prev := make(map[string]string)
	visited := make(map[string]bool)

	var h minHeap
	dist[source] = 0
	h.Push(source, 0)

	for h.Len() > 0 {
		item := h.Pop()
		u := item.node
		if visited[u] {
			continue
		}
		if d, ok := dist[u]; ok && item.dist > d {
			continue
		}
		visited[u] = true
		if target != "" && u == target {
			break
		}

		for _, v := range neighborsByMinWeight(g, u, weightAttr) {
			w, ok := minParallelWeight(g, u, v, weightAttr)
			if !ok {
				continue
			}
			nd := dist[u] + w
			if cur, ok := dist[v]; !ok || nd < cur {
				dist[v] = nd
				prev[v] = u
				h.Push(v, nd)
			}
		}
	}
	return dist, prev
}

// neighborsByMinWeight returns the unique out-neighbors of u (dedup
// across parallel edges), used so relaxation visits each (u,v) pair
// once per the collapse rule instead of once per parallel edge.
func neighborsByMinWeight(g *graph.Graph, u, weightAttr string) []string {
	return g.Neighbors(u)
}

func reconstructPath(prev map[string]string, origin, destination string) []string {
	path := []string{destination}
	cur := destination
	for cur != origin {
		p, ok := prev[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// VectorizedShortestPath computes shortest paths for parallel
// same-length origin/destination pairs, per edge §4.8 "Vectorized
// variant". Returns one result per pair; an unreachable pair reports
// xerrors.ErrNoPath in errs at the same index.
func VectorizedShortestPath(g *graph.Graph, origins, destinations []string, weightAttr string) (paths [][]string, costs []float64, errs []error) {
	n := len(origins)
	paths = make([][]string, n)
	costs = make([]float64, n)
	errs = make([]error, n)
	if len(destinations) != n {
		err := xerrors.ErrInvalidInput
		for i := range errs {
			errs[i] = err
		}
		return paths, costs, errs
	}
	for i := range origins {
		p, c, err := ShortestPath(g, origins[i], destinations[i], weightAttr)
		paths[i], costs[i], errs[i] = p, c, err
	}
	return paths, costs, errs
}
