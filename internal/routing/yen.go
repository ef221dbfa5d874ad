package routing

import (
	"math"
	"sort"
	"strings"

	"streetgraph/internal/graph"
)

// WeightedPath is one candidate path with its total cost.
type WeightedPath struct {
	Nodes []string
	Cost  float64
}

func pathKey(nodes []string) string { return strings.Join(nodes, "\x00") }

// KShortestPaths returns up to k loopless paths from origin to
// destination, sorted by non-decreasing total cost, via Yen's
// algorithm. Parallel edges collapse to their minimum weight, as in
// ShortestPath. Returns fewer than k paths if the candidate set B
// exhausts first; returns an empty slice if no path exists at all.
func KShortestPaths(g *graph.Graph, origin, destination, weightAttr string, k int) []WeightedPath {
	if weightAttr == "" {
		weightAttr = DefaultWeightAttr
	}
	if k <= 0 {
		return nil
	}

	first, cost, err := ShortestPath(g, origin, destination, weightAttr)
	if err != nil {
		return nil
	}
	A := []WeightedPath{{Nodes: first, Cost: cost}}
	seen := map[string]bool{pathKey(first): true}

	// B is a dedup-by-node-sequence candidate set, per the design
	// note warning that naive pseudo-code mishandles duplicate
	// candidates.
	var B []WeightedPath
	bSeen := map[string]bool{}

	for len(A) < k {
		prev := A[len(A)-1].Nodes

		for i := 0; i < len(prev)-1; i++ {
			spurNode := prev[i]
			rootPath := prev[:i+1]

			forbiddenEdges := make(map[string]bool) // "u\x00v"
			for _, p := range A {
				if len(p.Nodes) > i && pathKey(p.Nodes[:i+1]) == pathKey(rootPath) {
					forbiddenEdges[p.Nodes[i]+"\x00"+p.Nodes[i+1]] = true
				}
			}

			forbiddenNodes := make(map[string]bool)
			for _, n := range rootPath[:len(rootPath)-1] {
				forbiddenNodes[n] = true
			}

			spurPath, spurCost, ok := constrainedShortestPath(g, spurNode, destination, weightAttr, forbiddenNodes, forbiddenEdges)
			if !ok {
				continue
			}

			total := append(append([]string{}, rootPath[:len(rootPath)-1]...), spurPath...)
			rootCost := pathCost(g, rootPath, weightAttr)
			candidate := WeightedPath{Nodes: total, Cost: rootCost + spurCost}

			key := pathKey(candidate.Nodes)
			if !seen[key] && !bSeen[key] {
				bSeen[key] = true
				B = append(B, candidate)
			}
		}

		if len(B) == 0 {
			break
		}
		sort.SliceStable(B, func(i, j int) bool { return B[i].Cost < B[j].Cost })
		next := B[0]
		B = B[1:]
		seen[pathKey(next.Nodes)] = true
		A = append(A, next)
	}

	return A
}

// pathCost sums minimum-parallel-edge weight along an explicit node
// sequence.
func pathCost(g *graph.Graph, nodes []string, weightAttr string) float64 {
	var total float64
	for i := 0; i+1 < len(nodes); i++ {
		w, ok := minParallelWeight(g, nodes[i], nodes[i+1], weightAttr)
		if ok {
			total += w
		}
	}
	return total
}

// constrainedShortestPath runs Dijkstra from source to target with a
// set of forbidden nodes (never expanded, except source itself) and
// forbidden directed edges (never relaxed). Used by Yen's spur search.
func constrainedShortestPath(g *graph.Graph, source, target, weightAttr string, forbiddenNodes, forbiddenEdges map[string]bool) ([]string, float64, bool) {
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
		if u == target {
			break
		}

		for _, v := range g.Neighbors(u) {
			if forbiddenNodes[v] && v != target {
				continue
			}
			if forbiddenEdges[u+"\x00"+v] {
				continue
			}
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

	d, ok := dist[target]
	if !ok || math.IsInf(d, 1) {
		return nil, 0, false
	}
	return reconstructPath(prev, source, target), d, true
}
