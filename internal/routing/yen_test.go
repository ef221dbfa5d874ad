package routing

import "testing"

// TestKShortestPathsDiamond is the k-shortest-paths seed scenario: a
// diamond with two equal-cost 2-hop routes (cost 3 each) and one
// direct but expensive edge (cost 10). Asking for k=3 should return
// all three in non-decreasing cost order.
func TestKShortestPathsDiamond(t *testing.T) {
	g := diamondGraph(t)

	paths := KShortestPaths(g, "s", "t", "", 3)
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}

	for i := 1; i < len(paths); i++ {
		if paths[i].Cost < paths[i-1].Cost {
			t.Errorf("paths not sorted ascending: %v", paths)
		}
	}
	if paths[0].Cost != 3.0 || paths[1].Cost != 3.0 {
		t.Errorf("first two paths should both cost 3.0, got %v, %v", paths[0].Cost, paths[1].Cost)
	}
	if paths[2].Cost != 10.0 {
		t.Errorf("third path should be the direct 10.0 edge, got %v", paths[2].Cost)
	}

	seen := map[string]bool{}
	for _, p := range paths {
		k := pathKey(p.Nodes)
		if seen[k] {
			t.Errorf("duplicate path returned: %v", p.Nodes)
		}
		seen[k] = true
	}
}

func TestKShortestPathsNoRoute(t *testing.T) {
	g := diamondGraph(t)
	g.AddNode("isolated", nil)
	paths := KShortestPaths(g, "s", "isolated", "", 3)
	if len(paths) != 0 {
		t.Errorf("got %d paths, want 0 for an unreachable destination", len(paths))
	}
}

func TestKShortestPathsFewerThanK(t *testing.T) {
	g := diamondGraph(t)
	paths := KShortestPaths(g, "s", "t", "", 100)
	if len(paths) != 3 {
		t.Errorf("got %d paths, want 3 (candidate set exhausted before reaching k)", len(paths))
	}
}

func TestKShortestPathsZeroK(t *testing.T) {
	g := diamondGraph(t)
	if paths := KShortestPaths(g, "s", "t", "", 0); paths != nil {
		t.Errorf("k=0 should return nil, got %v", paths)
	}
}
