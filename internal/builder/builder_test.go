package builder

import (
	"testing"

	"streetgraph/internal/config"
	"streetgraph/internal/osmio"
)

func threeNodeBatch(tags map[string]string) []osmio.Batch {
	return []osmio.Batch{{
		Elements: []osmio.Element{
			{Type: "node", ID: 1, Lat: 1.0, Lon: 103.0},
			{Type: "node", ID: 2, Lat: 1.001, Lon: 103.0},
			{Type: "node", ID: 3, Lat: 1.002, Lon: 103.0},
			{Type: "way", ID: 900, Nodes: []int64{1, 2, 3}, Tags: tags},
		},
	}}
}

// TestOnewayReversal is seed scenario 1: a way [1,2,3] tagged
// oneway:"-1" must build edges (3->2) and (2->1), each with
// reversed=false, because the reversal is applied to the node
// sequence, not carried as a flag.
func TestOnewayReversal(t *testing.T) {
	cfg := config.Default()
	tags := map[string]string{"highway": "residential", "oneway": "-1"}

	g, err := Build(cfg, threeNodeBatch(tags), Options{NetworkType: "drive"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges())
	}

	edges32 := g.EdgesBetween("3", "2")
	if len(edges32) != 1 {
		t.Fatalf("expected edge 3->2, got %d edges between 3 and 2", len(edges32))
	}
	if edges32[0].Attrs["reversed"] != false {
		t.Errorf("3->2 reversed = %v, want false", edges32[0].Attrs["reversed"])
	}

	edges21 := g.EdgesBetween("2", "1")
	if len(edges21) != 1 {
		t.Fatalf("expected edge 2->1, got %d edges between 2 and 1", len(edges21))
	}
	if edges21[0].Attrs["reversed"] != false {
		t.Errorf("2->1 reversed = %v, want false", edges21[0].Attrs["reversed"])
	}

	if len(g.EdgesBetween("1", "2")) != 0 {
		t.Error("no forward 1->2 edge should exist for a oneway:-1 way")
	}
}

func TestBidirectionalWayProducesTwoDirections(t *testing.T) {
	cfg := config.Default()
	tags := map[string]string{"highway": "residential"}

	g, err := Build(cfg, threeNodeBatch(tags), Options{NetworkType: "drive"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumEdges() != 4 {
		t.Fatalf("NumEdges = %d, want 4 (2 segments x 2 directions)", g.NumEdges())
	}
	if len(g.EdgesBetween("1", "2")) != 1 || len(g.EdgesBetween("2", "1")) != 1 {
		t.Error("expected both directions between nodes 1 and 2")
	}
}

func TestBuildStampsFiniteLength(t *testing.T) {
	cfg := config.Default()
	g, err := Build(cfg, threeNodeBatch(map[string]string{"highway": "residential"}), Options{NetworkType: "drive"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range g.Edges() {
		l, ok := e.Attrs["length"].(float64)
		if !ok || l <= 0 {
			t.Errorf("edge %s->%s length = %v, want positive finite", e.U, e.V, e.Attrs["length"])
		}
	}
}

func TestBuildEmptyResponse(t *testing.T) {
	cfg := config.Default()
	_, err := Build(cfg, []osmio.Batch{{}}, Options{})
	if err == nil {
		t.Error("Build with no nodes and no ways should error")
	}
}

func TestBuildSetsGraphAttrs(t *testing.T) {
	cfg := config.Default()
	g, err := Build(cfg, threeNodeBatch(map[string]string{"highway": "residential"}), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v, _ := g.GraphAttr("simplified"); v != false {
		t.Errorf("simplified = %v, want false", v)
	}
	if v, _ := g.GraphAttr("crs"); v != cfg.DefaultCRS {
		t.Errorf("crs = %v, want %v", v, cfg.DefaultCRS)
	}
}

func TestRoundaboutForcedOneway(t *testing.T) {
	cfg := config.Default()
	tags := map[string]string{"highway": "residential", "junction": "roundabout"}
	g, err := Build(cfg, threeNodeBatch(tags), Options{NetworkType: "drive"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NumEdges() != 2 {
		t.Errorf("NumEdges = %d, want 2 (roundabout forces oneway)", g.NumEdges())
	}
}
