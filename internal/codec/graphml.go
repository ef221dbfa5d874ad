// Package codec implements C10: the GraphML and GeoJSON wire formats
// described in §6, including the type-coercion table applied on load.
package codec

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"streetgraph/internal/graph"
)

// CoercionTable maps an attribute key to a parser applied to its
// stringified value on GraphML load. Keys absent from the table are
// left as strings.
type CoercionTable map[string]func(string) (any, error)

// DefaultCoercions covers the keys named in §4.10: numeric attributes
// parse as float64, booleans as Go bool ("True"/"False"), and
// "simplified" likewise.
func DefaultCoercions() CoercionTable {
	numeric := func(s string) (any, error) { return strconv.ParseFloat(s, 64) }
	boolean := func(s string) (any, error) { return s == "True", nil }

	return CoercionTable{
		"x":            numeric,
		"y":            numeric,
		"elevation":    numeric,
		"osmid":        numeric,
		"street_count": numeric,
		"bearing":      numeric,
		"grade":        numeric,
		"length":       numeric,
		"oneway":       boolean,
		"reversed":     boolean,
		"speed_kph":    numeric,
		"travel_time":  numeric,
		"simplified":   boolean,
	}
}

type gmlKey struct {
	XMLName xml.Name `xml:"key"`
	ID      string   `xml:"id,attr"`
	For     string   `xml:"for,attr"`
	AttrKey string   `xml:"attr.name,attr"`
	AttrTyp string   `xml:"attr.type,attr"`
}

type gmlData struct {
	XMLName xml.Name `xml:"data"`
	Key     string   `xml:"key,attr"`
	Value   string   `xml:",chardata"`
}

type gmlNode struct {
	XMLName xml.Name  `xml:"node"`
	ID      string    `xml:"id,attr"`
	Data    []gmlData `xml:"data"`
}

type gmlEdge struct {
	XMLName xml.Name  `xml:"edge"`
	ID      string    `xml:"id,attr"`
	Source  string    `xml:"source,attr"`
	Target  string    `xml:"target,attr"`
	Data    []gmlData `xml:"data"`
}

type gmlGraph struct {
	XMLName    xml.Name  `xml:"graph"`
	EdgeDefault string   `xml:"edgedefault,attr"`
	Data       []gmlData `xml:"data"`
	Nodes      []gmlNode `xml:"node"`
	Edges      []gmlEdge `xml:"edge"`
}

type gmlDocument struct {
	XMLName xml.Name   `xml:"graphml"`
	Keys    []gmlKey   `xml:"key"`
	Graph   gmlGraph   `xml:"graph"`
}

// WriteGraphML serializes g into a standards-compliant GraphML
// document: a <key> declaration per distinct attribute name (scoped to
// graph/node/edge), booleans as True/False, structured values as
// compact JSON, and geometries as linestring WKT.
func WriteGraphML(g *graph.Graph) ([]byte, error) {
	doc := gmlDocument{Graph: gmlGraph{EdgeDefault: "directed"}}
	keyIDs := make(map[string]string)
	nextKey := 0
	keyFor := func(scope, name string) string {
		composite := scope + ":" + name
		if id, ok := keyIDs[composite]; ok {
			return id
		}
		id := fmt.Sprintf("d%d", nextKey)
		nextKey++
		keyIDs[composite] = id
		doc.Keys = append(doc.Keys, gmlKey{ID: id, For: scope, AttrKey: name, AttrTyp: "string"})
		return id
	}

	for _, k := range sortedKeys(graphAttrKeys(g)) {
		v, _ := g.GraphAttr(k)
		doc.Graph.Data = append(doc.Graph.Data, gmlData{Key: keyFor("graph", k), Value: stringify(v)})
	}

	for _, id := range g.Nodes() {
		n := g.Node(id)
		node := gmlNode{ID: id}
		for _, k := range sortedKeys(n.Attrs) {
			node.Data = append(node.Data, gmlData{Key: keyFor("node", k), Value: stringify(n.Attrs[k])})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}

	for _, e := range g.Edges() {
		edge := gmlEdge{ID: strconv.FormatUint(e.Key, 10), Source: e.U, Target: e.V}
		for _, k := range sortedKeys(e.Attrs) {
			val := e.Attrs[k]
			if k == "geometry" {
				if ls, ok := val.(orb.LineString); ok {
					edge.Data = append(edge.Data, gmlData{Key: keyFor("edge", k), Value: wkt.MarshalString(ls)})
					continue
				}
			}
			edge.Data = append(edge.Data, gmlData{Key: keyFor("edge", k), Value: stringify(val)})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, edge)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: marshal graphml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// ReadGraphML parses a GraphML document into a graph, applying table
// (DefaultCoercions merged under table's overrides) to every attribute
// value.
func ReadGraphML(data []byte, table CoercionTable) (*graph.Graph, error) {
	var doc gmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("codec: unmarshal graphml: %w", err)
	}

	merged := DefaultCoercions()
	for k, v := range table {
		merged[k] = v
	}

	keyNames := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		keyNames[k.ID] = k.AttrKey
	}

	g := graph.New()
	for _, d := range doc.Graph.Data {
		name := keyNames[d.Key]
		g.SetGraphAttr(name, coerce(name, d.Value, merged))
	}

	for _, n := range doc.Graph.Nodes {
		attrs := make(map[string]any, len(n.Data))
		for _, d := range n.Data {
			name := keyNames[d.Key]
			attrs[name] = coerce(name, d.Value, merged)
		}
		g.AddNode(n.ID, attrs)
	}

	for _, e := range doc.Graph.Edges {
		attrs := make(map[string]any, len(e.Data))
		for _, d := range e.Data {
			name := keyNames[d.Key]
			if name == "geometry" {
				if geom, err := wkt.Unmarshal(d.Value); err == nil {
					if ls, ok := geom.(orb.LineString); ok {
						attrs[name] = ls
						continue
					}
				}
			}
			attrs[name] = coerce(name, d.Value, merged)
		}
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		if _, err := g.AddEdge(e.Source, e.Target, attrs); err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
	}

	return g, nil
}

func coerce(name, raw string, table CoercionTable) any {
	if fn, ok := table[name]; ok {
		if v, err := fn(raw); err == nil {
			return v
		}
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case nil:
		return ""
	case float64, float32, int, int64, uint64:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func graphAttrKeys(g *graph.Graph) map[string]any {
	out := make(map[string]any)
	for _, k := range []string{"crs", "created_date", "created_with", "simplified"} {
		if v, ok := g.GraphAttr(k); ok {
			out[k] = v
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
