// Package stats implements C9: aggregate morphometrics over a built
// graph — street counts, length totals, circuity, orientation entropy.
package stats

import (
	"math"
	"sort"

	"streetgraph/internal/geo"
	"streetgraph/internal/graph"
)

// CountStreetsPerNode stamps street_count on every node: the number of
// incident edges, with a self-loop contributing 2 and each directed
// parallel edge counting as 1.
func CountStreetsPerNode(g *graph.Graph) map[string]int {
	counts := make(map[string]int, g.NumNodes())
	for _, n := range g.Nodes() {
		c := g.InDegree(n) + g.OutDegree(n)
		counts[n] = c
		node := g.Node(n)
		if node != nil {
			node.Attrs["street_count"] = c
		}
	}
	return counts
}

// EdgeLengthTotal sums the finite length attribute across all edges.
func EdgeLengthTotal(g *graph.Graph) float64 {
	var total float64
	for _, e := range g.Edges() {
		if l, ok := finiteFloat(e.Attrs["length"]); ok {
			total += l
		}
	}
	return total
}

func canonicalPair(u, v string) (string, string) {
	if u <= v {
		return u, v
	}
	return v, u
}

// StreetLengthTotal sums length over undirected (u,v) pairs,
// canonicalized as a sorted pair, counting each reciprocal pair once.
func StreetLengthTotal(g *graph.Graph) float64 {
	seen := make(map[[2]string]bool)
	var total float64
	for _, e := range g.Edges() {
		a, b := canonicalPair(e.U, e.V)
		key := [2]string{a, b}
		if seen[key] {
			continue
		}
		seen[key] = true
		if l, ok := finiteFloat(e.Attrs["length"]); ok {
			total += l
		}
	}
	return total
}

// StreetSegmentCount returns the number of unique unordered (u,v)
// pairs with at least one edge between them.
func StreetSegmentCount(g *graph.Graph) int {
	seen := make(map[[2]string]bool)
	for _, e := range g.Edges() {
		a, b := canonicalPair(e.U, e.V)
		seen[[2]string{a, b}] = true
	}
	return len(seen)
}

// IntersectionCount returns the number of nodes with street_count >=
// minStreets (default 2 when minStreets <= 0).
func IntersectionCount(g *graph.Graph, minStreets int) int {
	if minStreets <= 0 {
		minStreets = 2
	}
	counts := CountStreetsPerNode(g)
	n := 0
	for _, c := range counts {
		if c >= minStreets {
			n++
		}
	}
	return n
}

// CircuityAvg returns the mean over edges of (edge length / straight-
// line endpoint distance). Returns (0,false) if there are no valid
// edges; edges whose straight-line distance is zero are skipped.
func CircuityAvg(g *graph.Graph) (float64, bool) {
	projected := g.CRS() == graph.Projected
	var sum float64
	var n int
	for _, e := range g.Edges() {
		l, ok := finiteFloat(e.Attrs["length"])
		if !ok {
			continue
		}
		un, vn := g.Node(e.U), g.Node(e.V)
		if un == nil || vn == nil {
			continue
		}
		ux, _ := un.Attrs["x"].(float64)
		uy, _ := un.Attrs["y"].(float64)
		vx, _ := vn.Attrs["x"].(float64)
		vy, _ := vn.Attrs["y"].(float64)

		var straight float64
		if projected {
			straight = geo.Euclidean(ux, uy, vx, vy)
		} else {
			straight = geo.Haversine(uy, ux, vy, vx)
		}
		if straight == 0 {
			continue
		}
		sum += l / straight
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// SelfLoopProportion returns the fraction of edges that are
// self-loops.
func SelfLoopProportion(g *graph.Graph) float64 {
	total := g.NumEdges()
	if total == 0 {
		return 0
	}
	var loops int
	for _, e := range g.Edges() {
		if e.U == e.V {
			loops++
		}
	}
	return float64(loops) / float64(total)
}

// OrientationEntropy computes the Shannon entropy (natural log) of the
// given bearings (degrees, [0,360)) binned into a double-counted
// histogram of 2*bins bins, rolled and merged down to bins counts to
// reduce edge effects at bin boundaries. Returns (0,false) if bearings
// is empty.
func OrientationEntropy(bearings []float64, bins int) (float64, bool) {
	if len(bearings) == 0 || bins <= 0 {
		return 0, false
	}

	numBins := 2 * bins
	width := 360.0 / float64(numBins)
	hist := make([]float64, numBins)
	for _, b := range bearings {
		bb := math.Mod(b, 360)
		if bb < 0 {
			bb += 360
		}
		idx := int(bb / width)
		if idx >= numBins {
			idx = numBins - 1
		}
		hist[idx]++
	}

	// Roll the last bin to the front.
	rolled := make([]float64, numBins)
	rolled[0] = hist[numBins-1]
	copy(rolled[1:], hist[:numBins-1])

	merged := make([]float64, bins)
	for i := 0; i < bins; i++ {
		merged[i] = rolled[2*i] + rolled[2*i+1]
	}

	total := 0.0
	for _, c := range merged {
		total += c
	}
	if total == 0 {
		return 0, false
	}

	var entropy float64
	for _, c := range merged {
		if c == 0 {
			continue
		}
		p := c / total
		entropy -= p * math.Log(p)
	}
	return entropy, true
}

// EdgeBearings returns the initial compass bearing of every edge with
// finite endpoint coordinates, for feeding into OrientationEntropy.
func EdgeBearings(g *graph.Graph) []float64 {
	out := make([]float64, 0, g.NumEdges())
	for _, e := range g.Edges() {
		un, vn := g.Node(e.U), g.Node(e.V)
		if un == nil || vn == nil {
			continue
		}
		ux, _ := un.Attrs["x"].(float64)
		uy, _ := un.Attrs["y"].(float64)
		vx, _ := vn.Attrs["x"].(float64)
		vy, _ := vn.Attrs["y"].(float64)
		out = append(out, geo.Bearing(uy, ux, vy, vx))
	}
	sort.Float64s(out) // deterministic order for downstream snapshot tests
	return out
}

func finiteFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
