// Package builder implements C3: turning raw map-service elements into
// a directed multigraph, including the oneway/reversal decision and
// edge length stamping.
package builder

import (
	"fmt"
	"strconv"
	"time"

	"streetgraph/internal/config"
	"streetgraph/internal/geo"
	"streetgraph/internal/graph"
	"streetgraph/internal/osmio"
	"streetgraph/internal/xerrors"
)

// Options configures a single Build call.
type Options struct {
	// NetworkType selects cfg.BidirectionalNetworkTypes membership for
	// oneway rule (ii).
	NetworkType string

	// RetainAllNodes is not read by Build: every node element is
	// inserted whether or not a way references it, and nodes with no
	// incident way are never pruned.
	RetainAllNodes bool

	// SelectedTags lists which OSM tag keys are copied onto node/edge
	// attributes. Nil means copy everything.
	SelectedTags []string
}

type wayInfo struct {
	osmid   int64
	nodeIDs []string
	tags    map[string]string
}

// Build converts one or more fetcher response batches into a graph,
// with graph attributes crs/created_date/created_with/simplified=false
// pre-populated. Returns xerrors.ErrEmptyResponse if no nodes and no
// ways were found across all batches.
func Build(cfg *config.Config, batches []osmio.Batch, opts Options) (*graph.Graph, error) {
	nodeDict := make(map[string]osmio.Element)
	var ways []wayInfo

	for _, batch := range batches {
		for _, el := range batch.Elements {
			switch el.Type {
			case "node":
				nodeDict[strconv.FormatInt(el.ID, 10)] = el
			case "way":
				ids := dedupeConsecutive(el.Nodes)
				strIDs := make([]string, len(ids))
				for i, id := range ids {
					strIDs[i] = strconv.FormatInt(id, 10)
				}
				ways = append(ways, wayInfo{osmid: el.ID, nodeIDs: strIDs, tags: el.Tags})
			}
		}
	}

	if len(nodeDict) == 0 && len(ways) == 0 {
		return nil, xerrors.ErrEmptyResponse
	}

	g := graph.New()
	g.SetGraphAttr("crs", cfg.DefaultCRS)
	g.SetGraphAttr("created_date", time.Now().UTC().Format(time.RFC3339))
	g.SetGraphAttr("created_with", cfg.CreatedWith)
	g.SetGraphAttr("simplified", false)

	for id, el := range nodeDict {
		attrs := map[string]any{"x": el.Lon, "y": el.Lat}
		copySelectedTags(attrs, el.Tags, opts.SelectedTags)
		g.AddNode(id, attrs)
	}

	var skippedEdges int
	for _, w := range ways {
		if len(w.nodeIDs) < 2 {
			continue
		}
		oneway, reverse := decideOneway(cfg, opts.NetworkType, w.tags)
		nodeIDs := w.nodeIDs
		if oneway && reverse {
			nodeIDs = reversedCopy(nodeIDs)
		}

		for i := 0; i+1 < len(nodeIDs); i++ {
			u, v := nodeIDs[i], nodeIDs[i+1]
			if !g.HasNode(u) || !g.HasNode(v) {
				skippedEdges++
				continue
			}
			attrs := map[string]any{"osmid": w.osmid, "oneway": oneway, "reversed": false}
			copySelectedTags(attrs, w.tags, opts.SelectedTags)
			stampLength(g, attrs, u, v)
			if _, err := g.AddEdge(u, v, attrs); err != nil {
				return nil, fmt.Errorf("builder: %w", err)
			}

			if !oneway {
				backAttrs := map[string]any{"osmid": w.osmid, "oneway": oneway, "reversed": true}
				copySelectedTags(backAttrs, w.tags, opts.SelectedTags)
				stampLength(g, backAttrs, v, u)
				if _, err := g.AddEdge(v, u, backAttrs); err != nil {
					return nil, fmt.Errorf("builder: %w", err)
				}
			}
		}
	}

	if skippedEdges > 0 {
		cfg.Warnf("builder: skipped %d edges referencing unknown nodes", skippedEdges)
	}

	return g, nil
}

// decideOneway applies the ordered oneway rules from §4.3 step 4 and
// reports whether the node sequence must be reversed before edge
// emission (only possible when oneway is true).
func decideOneway(cfg *config.Config, networkType string, tags map[string]string) (oneway, reverse bool) {
	if cfg.AllOneway {
		return true, cfg.ReversedOnewayValues[tags["oneway"]]
	}
	if cfg.BidirectionalNetworkTypes[networkType] {
		return false, false
	}
	if cfg.OnewayValues[tags["oneway"]] {
		return true, cfg.ReversedOnewayValues[tags["oneway"]]
	}
	if tags["junction"] == "roundabout" {
		return true, false
	}
	return false, false
}

func stampLength(g *graph.Graph, attrs map[string]any, u, v string) {
	un, vn := g.Node(u), g.Node(v)
	if un == nil || vn == nil {
		return
	}
	uy, _ := un.Attrs["y"].(float64)
	ux, _ := un.Attrs["x"].(float64)
	vy, _ := vn.Attrs["y"].(float64)
	vx, _ := vn.Attrs["x"].(float64)
	attrs["length"] = geo.Haversine(uy, ux, vy, vx)
}

func dedupeConsecutive(ids []int64) []int64 {
	if len(ids) == 0 {
		return ids
	}
	out := make([]int64, 0, len(ids))
	out = append(out, ids[0])
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

func reversedCopy(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// copySelectedTags copies tags into attrs, restricted to allowlist if
// non-nil.
func copySelectedTags(attrs map[string]any, tags map[string]string, allowlist []string) {
	if tags == nil {
		return
	}
	if allowlist == nil {
		for k, v := range tags {
			attrs[k] = v
		}
		return
	}
	allowed := make(map[string]bool, len(allowlist))
	for _, k := range allowlist {
		allowed[k] = true
	}
	for k, v := range tags {
		if allowed[k] {
			attrs[k] = v
		}
	}
}
