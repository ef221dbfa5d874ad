// Package osmio adapts the map-service collaborator contract (§6:
// "async iterator of response batches {elements:[...]}") into the
// Element/Batch shapes the builder consumes, and offers a streaming
// PBF ingestion path built on paulmach/osm for callers working from a
// local extract file instead of a live fetcher.
package osmio

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// Element is one map-service element: a node (Lat/Lon set, Nodes nil)
// or a way (Nodes set, Lat/Lon zero).
type Element struct {
	Type string // "node" or "way"
	ID   int64
	Lat  float64
	Lon  float64
	Nodes []int64
	Tags  map[string]string
}

// Batch is one response batch from the fetcher collaborator.
type Batch struct {
	Elements []Element
}

// FromOSMNode converts a paulmach/osm.Node into an Element.
func FromOSMNode(n *osm.Node) Element {
	return Element{
		Type: "node",
		ID:   int64(n.ID),
		Lat:  n.Lat,
		Lon:  n.Lon,
		Tags: n.Tags.Map(),
	}
}

// FromOSMWay converts a paulmach/osm.Way into an Element. The node
// reference list retains duplicates/order exactly as the way
// specifies them; deduplication of consecutive repeats happens in the
// builder (§4.3 step 1), not here, so this package stays a faithful
// passthrough of the collaborator's wire shape.
func FromOSMWay(w *osm.Way) Element {
	ids := make([]int64, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = int64(wn.ID)
	}
	return Element{
		Type:  "way",
		ID:    int64(w.ID),
		Nodes: ids,
		Tags:  w.Tags.Map(),
	}
}

// ParsePBF streams a local .osm.pbf extract into a single Batch of
// node and way elements. Relations are skipped: the toolkit does not
// model relation/turn-restriction semantics (Non-goals, §1).
func ParsePBF(ctx context.Context, rs io.ReadSeeker) (Batch, error) {
	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipRelations = true
	defer scanner.Close()

	var batch Batch
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			batch.Elements = append(batch.Elements, FromOSMNode(obj))
		case *osm.Way:
			batch.Elements = append(batch.Elements, FromOSMWay(obj))
		}
	}
	if err := scanner.Err(); err != nil {
		return Batch{}, fmt.Errorf("osmio: scan pbf: %w", err)
	}
	return batch, nil
}
