// Package simplify implements C4: collapsing chains of interstitial
// (non-intersection) nodes into single edges, merging their attributes
// and synthesizing a geometry from the original node coordinates.
package simplify

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"streetgraph/internal/graph"
	"streetgraph/internal/stats"
	"streetgraph/internal/xerrors"
)

// maxPathSteps bounds path tracing to survive malformed inputs where
// the endpoint predicate was violated upstream (e.g. a hand-built
// graph fed directly to Simplify).
const maxPathSteps = 10_000

// Options configures a Simplify call.
type Options struct {
	// TrackMergedEdges records the constituent (u,v) pairs consumed by
	// each collapsed edge under the "merged_edges" attribute.
	TrackMergedEdges bool

	// RemoveRings drops a node left with only a self-loop after
	// collapse (default true via simplify.Simplify's caller; exposed
	// here so tests can disable it).
	RemoveRings bool
}

// DefaultOptions returns the options Simplify uses unless overridden.
func DefaultOptions() Options {
	return Options{TrackMergedEdges: true, RemoveRings: true}
}

// Simplify mutates g in place, collapsing every interstitial chain
// into a single edge between its surrounding endpoints. Returns
// xerrors.ErrAlreadySimplified if g's simplified graph attribute is
// already true, and xerrors.ErrGraphTooComplex if a single path trace
// exceeds maxPathSteps.
func Simplify(g *graph.Graph, opts Options) error {
	if v, ok := g.GraphAttr("simplified"); ok {
		if b, _ := v.(bool); b {
			return xerrors.ErrAlreadySimplified
		}
	}

	isEndpoint := make(map[string]bool, g.NumNodes())
	for _, n := range g.Nodes() {
		isEndpoint[n] = endpointPredicate(g, n)
	}

	paths, err := tracePaths(g, isEndpoint)
	if err != nil {
		return err
	}

	type newEdge struct {
		u, v  string
		attrs map[string]any
	}
	var newEdges []newEdge
	toRemove := make(map[string]bool)

	for _, path := range paths {
		attrs := mergeAttributes(g, path, opts.TrackMergedEdges)
		attrs["geometry"] = synthesizeGeometry(g, path)
		newEdges = append(newEdges, newEdge{u: path[0], v: path[len(path)-1], attrs: attrs})
		for _, n := range path[1 : len(path)-1] {
			toRemove[n] = true
		}
	}

	for _, e := range newEdges {
		if _, err := g.AddEdge(e.u, e.v, e.attrs); err != nil {
			return fmt.Errorf("simplify: %w", err)
		}
	}
	for n := range toRemove {
		g.RemoveNode(n)
	}

	if opts.RemoveRings {
		removeRings(g)
	}

	g.SetGraphAttr("simplified", true)
	stats.CountStreetsPerNode(g)
	return nil
}

// endpointPredicate implements §4.4's endpoint test: self-loop, zero
// in/out degree, or a degree/neighbor-count shape outside {N=2,D=2} /
// {N=2,D=4} (true chain on a oneway, and two reciprocal pairs on a
// bidirectional chain, respectively) all mark n as an endpoint.
func endpointPredicate(g *graph.Graph, n string) bool {
	if g.HasSelfLoop(n) {
		return true
	}
	if g.InDegree(n) == 0 || g.OutDegree(n) == 0 {
		return true
	}
	d := g.Degree(n)
	neighbors := g.AllNeighbors(n)
	nCount := len(neighbors)
	if nCount == 2 && (d == 2 || d == 4) {
		return false
	}
	return true
}

// tracePaths walks forward from every endpoint's non-endpoint
// out-neighbors until another endpoint is reached, per §4.4 "Path
// tracing".
func tracePaths(g *graph.Graph, isEndpoint map[string]bool) ([][]string, error) {
	var paths [][]string

	for _, e := range g.Nodes() {
		if !isEndpoint[e] {
			continue
		}
		for _, s := range g.Neighbors(e) {
			if isEndpoint[s] {
				continue
			}
			path := []string{e, s}
			prev, cur := e, s
			steps := 0
			for !isEndpoint[cur] {
				steps++
				if steps > maxPathSteps {
					return nil, xerrors.ErrGraphTooComplex
				}
				next := ""
				for _, cand := range g.Neighbors(cur) {
					if cand != prev {
						next = cand
						break
					}
				}
				if next == "" {
					// No out-neighbor other than the one we came
					// from: terminate with the path so far rather
					// than loop forever.
					break
				}
				path = append(path, next)
				prev, cur = cur, next
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// mergeAttributes collects the attributes of the edges traversed by
// path (the minimum-key edge between each consecutive pair): length
// sums (flattening nested numeric lists, skipping non-finite values);
// every other key dedupes to a scalar if all values agree, else a list
// in visit order.
func mergeAttributes(g *graph.Graph, path []string, trackMerged bool) map[string]any {
	collected := make(map[string][]any)
	var mergedPairs [][2]string

	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		edges := g.EdgesBetween(u, v)
		if len(edges) == 0 {
			continue
		}
		e := edges[0]
		for k, val := range e.Attrs {
			collected[k] = append(collected[k], val)
		}
		mergedPairs = append(mergedPairs, [2]string{u, v})
	}

	out := make(map[string]any, len(collected))
	for k, vals := range collected {
		if k == "length" {
			out["length"] = sumFinite(vals)
			continue
		}
		out[k] = dedupeOrList(vals)
	}
	if trackMerged {
		out["merged_edges"] = mergedPairs
	}
	return out
}

func sumFinite(vals []any) float64 {
	var total float64
	for _, v := range vals {
		switch n := v.(type) {
		case float64:
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				total += n
			}
		case []float64:
			for _, f := range n {
				if !math.IsNaN(f) && !math.IsInf(f, 0) {
					total += f
				}
			}
		}
	}
	return total
}

func dedupeOrList(vals []any) any {
	if len(vals) == 0 {
		return nil
	}
	allEqual := true
	for _, v := range vals[1:] {
		if !equalAttr(v, vals[0]) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return vals[0]
	}
	return append([]any(nil), vals...)
}

func equalAttr(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// synthesizeGeometry builds a linestring whose vertices are the
// coordinates of path's nodes in order.
func synthesizeGeometry(g *graph.Graph, path []string) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, id := range path {
		n := g.Node(id)
		if n == nil {
			continue
		}
		x, _ := n.Attrs["x"].(float64)
		y, _ := n.Attrs["y"].(float64)
		ls = append(ls, orb.Point{x, y})
	}
	return ls
}

// removeRings drops any node left with a self-loop and no other
// neighbor after collapse.
func removeRings(g *graph.Graph) {
	var toRemove []string
	for _, n := range g.Nodes() {
		if g.HasSelfLoop(n) && len(g.AllNeighbors(n)) == 0 {
			toRemove = append(toRemove, n)
		}
	}
	sort.Strings(toRemove)
	for _, n := range toRemove {
		g.RemoveNode(n)
	}
}
