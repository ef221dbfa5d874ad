package codec

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"streetgraph/internal/config"
	"streetgraph/internal/graph"
)

// GraphToGeoJSON implements §6's graph_to_geojson: nodes as a Point
// FeatureCollection and edges as a LineString FeatureCollection, each
// feature carrying the node/edge's attributes as properties.
func GraphToGeoJSON(g *graph.Graph) (nodes, edges *geojson.FeatureCollection) {
	nodes = geojson.NewFeatureCollection()
	for _, id := range g.Nodes() {
		n := g.Node(id)
		x, _ := n.Attrs["x"].(float64)
		y, _ := n.Attrs["y"].(float64)
		f := geojson.NewPointFeature([]float64{x, y})
		f.Properties["id"] = id
		for k, v := range n.Attrs {
			f.Properties[k] = v
		}
		nodes.AddFeature(f)
	}

	edges = geojson.NewFeatureCollection()
	for _, e := range g.Edges() {
		coords := edgeCoords(g, e)
		f := geojson.NewLineStringFeature(coords)
		f.Properties["id"] = e.Key
		f.Properties["source"] = e.U
		f.Properties["target"] = e.V
		for k, v := range e.Attrs {
			if k == "geometry" {
				continue
			}
			f.Properties[k] = v
		}
		edges.AddFeature(f)
	}
	return nodes, edges
}

func edgeCoords(g *graph.Graph, e *graph.Edge) [][]float64 {
	if ls, ok := e.Attrs["geometry"].(orb.LineString); ok && len(ls) >= 2 {
		out := make([][]float64, len(ls))
		for i, p := range ls {
			out[i] = []float64{p[0], p[1]}
		}
		return out
	}

	un, vn := g.Node(e.U), g.Node(e.V)
	if un == nil || vn == nil {
		return nil
	}
	ux, _ := un.Attrs["x"].(float64)
	uy, _ := un.Attrs["y"].(float64)
	vx, _ := vn.Attrs["x"].(float64)
	vy, _ := vn.Attrs["y"].(float64)
	return [][]float64{{ux, uy}, {vx, vy}}
}

// GraphFromGDFs implements §6's graph_from_gdfs: rebuilds a graph from
// a node FeatureCollection and an edge FeatureCollection. Node id is
// read from the "osmid" or "id" property; edge endpoints from "u"/"v"
// or "source"/"target". Edges referencing unknown nodes are skipped
// and logged at WARNING.
func GraphFromGDFs(cfg *config.Config, nodes, edges *geojson.FeatureCollection) (*graph.Graph, error) {
	g := graph.New()
	g.SetGraphAttr("crs", cfg.DefaultCRS)
	g.SetGraphAttr("created_with", cfg.CreatedWith)
	g.SetGraphAttr("simplified", false)

	for _, f := range nodes.Features {
		id := nodeID(f.Properties)
		if id == "" {
			continue
		}
		attrs := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = v
		}
		if f.Geometry != nil && f.Geometry.Point != nil && len(f.Geometry.Point) >= 2 {
			attrs["x"] = f.Geometry.Point[0]
			attrs["y"] = f.Geometry.Point[1]
		}
		g.AddNode(id, attrs)
	}

	var skipped int
	for _, f := range edges.Features {
		u, v := edgeEndpoints(f.Properties)
		if u == "" || v == "" || !g.HasNode(u) || !g.HasNode(v) {
			skipped++
			continue
		}
		attrs := make(map[string]any, len(f.Properties))
		for k, val := range f.Properties {
			if k == "source" || k == "target" || k == "u" || k == "v" {
				continue
			}
			attrs[k] = val
		}
		if _, err := g.AddEdge(u, v, attrs); err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
	}
	if skipped > 0 {
		cfg.Warnf("codec: skipped %d edges referencing unknown nodes", skipped)
	}

	return g, nil
}

func nodeID(props map[string]any) string {
	for _, k := range []string{"osmid", "id"} {
		if v, ok := props[k]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func edgeEndpoints(props map[string]any) (u, v string) {
	if uv, ok := props["u"]; ok {
		u = fmt.Sprint(uv)
	} else if uv, ok := props["source"]; ok {
		u = fmt.Sprint(uv)
	}
	if vv, ok := props["v"]; ok {
		v = fmt.Sprint(vv)
	} else if vv, ok := props["target"]; ok {
		v = fmt.Sprint(vv)
	}
	return u, v
}
