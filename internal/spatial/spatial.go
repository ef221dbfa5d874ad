// Package spatial implements C7: a static index over node coordinates
// for nearest-node queries, an R-tree accelerated nearest-edge query,
// and a quadrat grid accelerator for polygon-intersection counting.
package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"streetgraph/internal/geo"
	"streetgraph/internal/graph"
)

// Index is a static spatial index over one graph snapshot's node
// coordinates and edge geometries. Rebuild it after mutating the
// graph.
type Index struct {
	geographic bool
	nodeIDs    []string
	nodeXY     []orb.Point
	nodeByID   map[string]orb.Point
	nodeTree   rtree.RTreeG[string]
	edgeTree   rtree.RTreeG[edgeRef]
}

type edgeRef struct {
	u, v string
	key  uint64
	line orb.LineString
}

// Build indexes every node with finite x,y coordinates and every
// edge's geometry (synthesizing an endpoint segment where none was
// stamped).
func Build(g *graph.Graph) *Index {
	idx := &Index{geographic: g.CRS() != graph.Projected, nodeByID: make(map[string]orb.Point)}

	for _, n := range g.Nodes() {
		node := g.Node(n)
		x, xok := node.Attrs["x"].(float64)
		y, yok := node.Attrs["y"].(float64)
		if !xok || !yok {
			continue
		}
		idx.nodeIDs = append(idx.nodeIDs, n)
		idx.nodeXY = append(idx.nodeXY, orb.Point{x, y})
		idx.nodeByID[n] = orb.Point{x, y}
		idx.nodeTree.Insert([2]float64{x, y}, [2]float64{x, y}, n)
	}

	for _, e := range g.Edges() {
		ls := edgeLineString(g, e)
		if len(ls) < 2 {
			continue
		}
		bound := ls.Bound()
		idx.edgeTree.Insert(
			[2]float64{bound.Min[0], bound.Min[1]},
			[2]float64{bound.Max[0], bound.Max[1]},
			edgeRef{u: e.U, v: e.V, key: e.Key, line: ls},
		)
	}

	return idx
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

func (idx *Index) distance(ax, ay, bx, by float64) float64 {
	if idx.geographic {
		return geo.Haversine(ay, ax, by, bx)
	}
	return geo.Euclidean(ax, ay, bx, by)
}

// NearestNode returns the id of the node closest to (x,y) and its
// distance in meters (great-circle if the index is geographic,
// Euclidean otherwise). The planar R-tree query is used as a coarse
// filter, refined by the true metric.
func (idx *Index) NearestNode(x, y float64) (id string, distMeters float64, ok bool) {
	if len(idx.nodeIDs) == 0 {
		return "", 0, false
	}

	// candidateLimit bounds how many planar-nearest candidates get
	// refined with the true metric: enough that the geodesic-vs-planar
	// distortion at short range can't hide the real nearest node behind
	// an early candidate.
	const candidateLimit = 16

	best := ""
	bestDist := math.Inf(1)
	visited := 0
	idx.nodeTree.Nearby(
		rtree.BoxDist[string]([2]float64{x, y}, [2]float64{x, y}, nil),
		func(_, _ [2]float64, data string, _ float64) bool {
			node := idx.lookupNode(data)
			d := idx.distance(x, y, node[0], node[1])
			if d < bestDist {
				bestDist = d
				best = data
			}
			visited++
			return visited < candidateLimit
		},
	)
	return best, bestDist, best != ""
}

func (idx *Index) lookupNode(id string) orb.Point {
	return idx.nodeByID[id]
}

// NearestEdgeResult identifies one edge and the point-to-line
// distance from the query point, in meters.
type NearestEdgeResult struct {
	U, V       string
	Key        uint64
	DistMeters float64
}

// NearestEdge minimizes point-to-line distance (meters) across all
// indexed edges, tie-broken by first seen.
func (idx *Index) NearestEdge(x, y float64) (NearestEdgeResult, bool) {
	best := NearestEdgeResult{}
	bestDist := math.Inf(1)
	found := false

	idx.edgeTree.Scan(func(_, _ [2]float64, data edgeRef) bool {
		d := idx.lineDistance(x, y, data.line)
		if d < bestDist {
			bestDist = d
			best = NearestEdgeResult{U: data.u, V: data.v, Key: data.key, DistMeters: d}
			found = true
		}
		return true
	})

	return best, found
}

func (idx *Index) lineDistance(x, y float64, ls orb.LineString) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(ls); i++ {
		ax, ay := ls[i][0], ls[i][1]
		bx, by := ls[i+1][0], ls[i+1][1]
		var d float64
		if idx.geographic {
			d, _ = geo.PointToSegmentDist(y, x, ay, ax, by, bx)
		} else {
			d, _ = geo.PointToSegmentDistEuclid(x, y, ax, ay, bx, by)
		}
		if d < best {
			best = d
		}
	}
	return best
}

// QuadratGrid partitions polygon's bbox into a uniform square grid of
// width w, keeping the cells whose bbox overlaps the polygon's bbox.
type QuadratGrid struct {
	Cells []orb.Polygon
}

// BuildQuadratGrid computes the polygon's bbox and a uniform grid of
// width w covering it. A cell is kept when its bbox overlaps the
// polygon's bbox; kept cells carry their raw square geometry and are
// not clipped to the polygon itself.
func BuildQuadratGrid(poly orb.Polygon, w float64) *QuadratGrid {
	bound := poly.Bound()
	grid := &QuadratGrid{}

	for minX := bound.Min[0]; minX < bound.Max[0]; minX += w {
		maxX := minX + w
		for minY := bound.Min[1]; minY < bound.Max[1]; minY += w {
			maxY := minY + w
			cell := orb.Polygon{orb.Ring{
				{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
			}}
			if cellIntersectsPolygon(cell, poly) {
				grid.Cells = append(grid.Cells, cell)
			}
		}
	}
	return grid
}

func cellIntersectsPolygon(cell, poly orb.Polygon) bool {
	cb, pb := cell.Bound(), poly.Bound()
	return cb.Intersects(pb)
}

// CountIntersecting reports, for a set of point features, how many
// fall within any cell of the grid (bbox cull then precise
// point-in-polygon), per §4.7 step 4.
func (q *QuadratGrid) CountIntersecting(points []orb.Point) int {
	count := 0
	for _, pt := range points {
		for _, cell := range q.Cells {
			if cell.Bound().Contains(pt) && ringContains(cell[0], pt) {
				count++
				break
			}
		}
	}
	return count
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
