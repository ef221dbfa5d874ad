// Package consolidate implements C5: merging junctions whose buffered
// neighborhoods overlap into single representative nodes.
package consolidate

import (
	"sort"

	"streetgraph/internal/geo"
	"streetgraph/internal/graph"
)

// Options configures a Consolidate call.
type Options struct {
	// Tolerance is the buffer radius t (meters); nodes at distance <=
	// 2*Tolerance are merged.
	Tolerance float64
}

// Consolidate returns a fresh graph with intersections within 2*t of
// each other merged into single representative nodes, per §4.5. The
// source graph is left untouched.
func Consolidate(g *graph.Graph, opts Options) *graph.Graph {
	nodes := g.Nodes()
	coords := make(map[string][2]float64, len(nodes))
	hasCoord := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		node := g.Node(n)
		x, xok := node.Attrs["x"].(float64)
		y, yok := node.Attrs["y"].(float64)
		if xok && yok {
			coords[n] = [2]float64{x, y}
			hasCoord[n] = true
		}
	}

	uf := graph.NewUnionFind()
	for _, n := range nodes {
		uf.Find(n)
	}

	projected := g.CRS() == graph.Projected
	threshold := 2 * opts.Tolerance

	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		if !hasCoord[a] {
			continue
		}
		ca := coords[a]
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			if !hasCoord[b] {
				continue
			}
			cb := coords[b]
			var d float64
			if projected {
				d = geo.Euclidean(ca[0], ca[1], cb[0], cb[1])
			} else {
				d = geo.Haversine(ca[1], ca[0], cb[1], cb[0])
			}
			if d <= threshold {
				uf.Union(a, b)
			}
		}
	}

	groups := uf.Groups()
	repOf := make(map[string]string, len(nodes))
	for _, members := range groups {
		sorted := append([]string(nil), members...)
		sort.Strings(sorted)
		rep := sorted[0]
		for _, m := range sorted {
			repOf[m] = rep
		}
	}

	out := graph.New()
	for k, v := range snapshotGraphAttrs(g) {
		out.SetGraphAttr(k, v)
	}

	for rep, members := range invert(repOf) {
		sort.Strings(members)
		attrs := map[string]any{}
		if base := g.Node(rep); base != nil {
			for k, v := range base.Attrs {
				attrs[k] = v
			}
		}
		if len(members) > 1 {
			var sumX, sumY float64
			var n int
			for _, m := range members {
				if c, ok := coords[m]; ok {
					sumX += c[0]
					sumY += c[1]
					n++
				}
			}
			if n > 0 {
				attrs["x"] = sumX / float64(n)
				attrs["y"] = sumY / float64(n)
			}
			attrs["_merged_nodes"] = members
		}
		out.AddNode(rep, attrs)
	}

	for _, e := range g.Edges() {
		ru, rv := repOf[e.U], repOf[e.V]
		if ru == "" {
			ru = e.U
		}
		if rv == "" {
			rv = e.V
		}
		attrs := make(map[string]any, len(e.Attrs))
		for k, v := range e.Attrs {
			attrs[k] = v
		}
		out.AddEdge(ru, rv, attrs)
	}

	return out
}

func invert(repOf map[string]string) map[string][]string {
	out := make(map[string][]string)
	for member, rep := range repOf {
		out[rep] = append(out[rep], member)
	}
	return out
}

func snapshotGraphAttrs(g *graph.Graph) map[string]any {
	out := make(map[string]any)
	for _, k := range []string{"crs", "created_date", "created_with", "simplified"} {
		if v, ok := g.GraphAttr(k); ok {
			out[k] = v
		}
	}
	return out
}
