package codec

import (
	"testing"

	"streetgraph/internal/graph"
)

func sampleGraphMLGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.SetGraphAttr("crs", "epsg:4326")
	g.SetGraphAttr("simplified", true)
	g.AddNode("1", map[string]any{"x": 103.0, "y": 1.0, "street_count": 2})
	g.AddNode("2", map[string]any{"x": 103.1, "y": 1.1, "street_count": 2})
	g.AddEdge("1", "2", map[string]any{"length": 500.0, "oneway": true, "reversed": false})
	return g
}

func TestWriteReadGraphMLRoundTrip(t *testing.T) {
	g := sampleGraphMLGraph(t)

	data, err := WriteGraphML(g)
	if err != nil {
		t.Fatalf("WriteGraphML: %v", err)
	}

	got, err := ReadGraphML(data, nil)
	if err != nil {
		t.Fatalf("ReadGraphML: %v", err)
	}

	if got.NumNodes() != 2 {
		t.Errorf("NumNodes = %d, want 2", got.NumNodes())
	}
	if got.NumEdges() != 1 {
		t.Errorf("NumEdges = %d, want 1", got.NumEdges())
	}
	if v, _ := got.GraphAttr("simplified"); v != true {
		t.Errorf("simplified = %v, want true (bool coercion)", v)
	}

	edges := got.EdgesBetween("1", "2")
	if len(edges) != 1 {
		t.Fatalf("expected edge 1->2")
	}
	e := edges[0]
	if l, ok := e.Attrs["length"].(float64); !ok || l != 500.0 {
		t.Errorf("length = %v, want 500.0 (numeric coercion)", e.Attrs["length"])
	}
	if e.Attrs["oneway"] != true {
		t.Errorf("oneway = %v, want true (boolean coercion)", e.Attrs["oneway"])
	}
}

func TestReadGraphMLAppliesOverrideCoercion(t *testing.T) {
	g := graph.New()
	g.AddNode("1", map[string]any{"custom": "7"})
	data, err := WriteGraphML(g)
	if err != nil {
		t.Fatalf("WriteGraphML: %v", err)
	}

	table := CoercionTable{
		"custom": func(s string) (any, error) { return "prefixed-" + s, nil },
	}
	got, err := ReadGraphML(data, table)
	if err != nil {
		t.Fatalf("ReadGraphML: %v", err)
	}
	if got.Node("1").Attrs["custom"] != "prefixed-7" {
		t.Errorf("custom = %v, want prefixed-7", got.Node("1").Attrs["custom"])
	}
}

func TestReadGraphMLSkipsUnknownNodeEdges(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<graphml>
  <key id="d0" for="edge" attr.name="length" attr.type="string"></key>
  <graph edgedefault="directed">
    <node id="1"></node>
    <edge id="0" source="1" target="ghost">
      <data key="d0">5</data>
    </edge>
  </graph>
</graphml>`)

	g, err := ReadGraphML(data, nil)
	if err != nil {
		t.Fatalf("ReadGraphML: %v", err)
	}
	if g.NumEdges() != 0 {
		t.Errorf("NumEdges = %d, want 0 (edge referencing unknown node should be skipped)", g.NumEdges())
	}
}
