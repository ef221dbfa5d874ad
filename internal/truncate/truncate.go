// Package truncate implements C6: bbox/polygon/distance node
// filtering, edge-aware retention, and connected-component extraction.
package truncate

import (
	"sort"

	"github.com/paulmach/orb"

	"streetgraph/internal/graph"
	"streetgraph/internal/routing"
)

// BBox is [north, south, east, west].
type BBox struct {
	North, South, East, West float64
}

func (b BBox) contains(x, y float64) bool {
	return !(y > b.North || y < b.South || x > b.East || x < b.West)
}

func (b BBox) polygon() orb.Polygon {
	ring := orb.Ring{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}
	return orb.Polygon{ring}
}

// ByBBox drops nodes outside bbox. If truncateByEdge is false, a node
// is dropped purely by its own coordinate test. If true, an outside
// node is reprieved when it is incident to an edge whose geometry (or
// endpoint-segment fallback) intersects the bbox polygon. Returns a
// fresh graph; if largestComponentOnly is set, the result is further
// restricted to its largest weakly connected component.
func ByBBox(g *graph.Graph, bbox BBox, truncateByEdge, largestComponentOnly bool) *graph.Graph {
	poly := bbox.polygon()
	outside := make(map[string]bool)
	for _, n := range g.Nodes() {
		node := g.Node(n)
		x, _ := node.Attrs["x"].(float64)
		y, _ := node.Attrs["y"].(float64)
		if !bbox.contains(x, y) {
			outside[n] = true
		}
	}

	if truncateByEdge {
		for _, e := range g.Edges() {
			ls := edgeLineString(g, e)
			if lineIntersectsPolygon(ls, poly) {
				delete(outside, e.U)
				delete(outside, e.V)
			}
		}
	}

	keep := make(map[string]bool)
	for _, n := range g.Nodes() {
		if !outside[n] {
			keep[n] = true
		}
	}

	out := inducedSubgraph(g, keep)
	if largestComponentOnly {
		out = LargestWeaklyConnected(out)
	}
	return out
}

// ByPolygon drops any node whose point is not inside one of polys (a
// polygon's first ring is its outer boundary, further rings are holes).
func ByPolygon(g *graph.Graph, polys []orb.Polygon) *graph.Graph {
	keep := make(map[string]bool)
	for _, n := range g.Nodes() {
		node := g.Node(n)
		x, _ := node.Attrs["x"].(float64)
		y, _ := node.Attrs["y"].(float64)
		pt := orb.Point{x, y}
		for _, p := range polys {
			if polygonContains(p, pt) {
				keep[n] = true
				break
			}
		}
	}
	return inducedSubgraph(g, keep)
}

// ByDistance runs weighted Dijkstra from source under weightAttr
// (default "length") and drops nodes with distance > dist or
// unreachable.
func ByDistance(g *graph.Graph, source string, dist float64, weightAttr string) *graph.Graph {
	if weightAttr == "" {
		weightAttr = routing.DefaultWeightAttr
	}
	distances, _ := routing.SingleSourceDijkstra(g, source, weightAttr)
	keep := make(map[string]bool)
	for n, d := range distances {
		if d <= dist {
			keep[n] = true
		}
	}
	return inducedSubgraph(g, keep)
}

// LargestWeaklyConnected restricts g to its largest weakly connected
// component (undirected reachability), ties broken by first-found.
func LargestWeaklyConnected(g *graph.Graph) *graph.Graph {
	components := WeaklyConnectedComponents(g)
	if len(components) == 0 {
		return g.Clone()
	}
	best := components[0]
	for _, c := range components[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	keep := make(map[string]bool, len(best))
	for _, n := range best {
		keep[n] = true
	}
	return inducedSubgraph(g, keep)
}

// WeaklyConnectedComponents returns every weakly connected component
// (DFS over the symmetric closure of edges), in first-found order.
func WeaklyConnectedComponents(g *graph.Graph) [][]string {
	visited := make(map[string]bool)
	var components [][]string
	for _, n := range g.Nodes() {
		if visited[n] {
			continue
		}
		var comp []string
		stack := []string{n}
		visited[n] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, nb := range g.AllNeighbors(cur) {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}
	return components
}

// StronglyConnectedComponents finds SCCs via an iterative Tarjan's
// algorithm, returned in first-found order.
func StronglyConnectedComponents(g *graph.Graph) [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var sccs [][]string

	type frame struct {
		node     string
		children []string
		ci       int
	}

	for _, root := range g.Nodes() {
		if _, ok := indices[root]; ok {
			continue
		}

		var work []*frame
		work = append(work, &frame{node: root, children: g.Neighbors(root)})
		indices[root] = index
		lowlink[root] = index
		index++
		stack = append(stack, root)
		onStack[root] = true

		for len(work) > 0 {
			f := work[len(work)-1]
			if f.ci < len(f.children) {
				w := f.children[f.ci]
				f.ci++
				if _, ok := indices[w]; !ok {
					indices[w] = index
					lowlink[w] = index
					index++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &frame{node: w, children: g.Neighbors(w)})
				} else if onStack[w] {
					if indices[w] < lowlink[f.node] {
						lowlink[f.node] = indices[w]
					}
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if lowlink[f.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[f.node]
				}
			}

			if lowlink[f.node] == indices[f.node] {
				var comp []string
				for {
					n := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[n] = false
					comp = append(comp, n)
					if n == f.node {
						break
					}
				}
				sort.Strings(comp)
				sccs = append(sccs, comp)
			}
		}
	}
	return sccs
}

func inducedSubgraph(g *graph.Graph, keep map[string]bool) *graph.Graph {
	out := graph.New()
	for _, k := range []string{"crs", "created_date", "created_with", "simplified"} {
		if v, ok := g.GraphAttr(k); ok {
			out.SetGraphAttr(k, v)
		}
	}
	for _, n := range g.Nodes() {
		if keep[n] {
			node := g.Node(n)
			attrs := make(map[string]any, len(node.Attrs))
			for k, v := range node.Attrs {
				attrs[k] = v
			}
			out.AddNode(n, attrs)
		}
	}
	for _, e := range g.Edges() {
		if keep[e.U] && keep[e.V] {
			attrs := make(map[string]any, len(e.Attrs))
			for k, v := range e.Attrs {
				attrs[k] = v
			}
			out.AddEdge(e.U, e.V, attrs)
		}
	}
	return out
}

func edgeLineString(g *graph.Graph, e *graph.Edge) orb.LineString {
	if ls, ok := e.Attrs["geometry"].(orb.LineString); ok && len(ls) >= 2 {
		return ls
	}
	un, vn := g.Node(e.U), g.Node(e.V)
	if un == nil || vn == nil {
		return nil
	}
	ux, _ := un.Attrs["x"].(float64)
	uy, _ := un.Attrs["y"].(float64)
	vx, _ := vn.Attrs["x"].(float64)
	vy, _ := vn.Attrs["y"].(float64)
	return orb.LineString{{ux, uy}, {vx, vy}}
}

func lineIntersectsPolygon(ls orb.LineString, poly orb.Polygon) bool {
	if len(ls) == 0 {
		return false
	}
	for _, pt := range ls {
		if polygonContains(poly, pt) {
			return true
		}
	}
	bound := poly.Bound()
	for i := 0; i+1 < len(ls); i++ {
		if segmentIntersectsBBox(ls[i], ls[i+1], bound) {
			return true
		}
	}
	return false
}

// polygonContains reports whether pt lies inside poly, treating the
// first ring as the outer boundary and any further rings as holes, via
// the standard ray-casting test.
func polygonContains(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 || !ringContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

func ringContains(ring orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > pt[1]) != (yj > pt[1]) {
			xIntersect := xi + (pt[1]-yi)/(yj-yi)*(xj-xi)
			if pt[0] < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func segmentIntersectsBBox(a, b orb.Point, bound orb.Bound) bool {
	segBound := orb.Bound{
		Min: orb.Point{fmin(a[0], b[0]), fmin(a[1], b[1])},
		Max: orb.Point{fmax(a[0], b[0]), fmax(a[1], b[1])},
	}
	return segBound.Intersects(bound)
}

func fmin(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
