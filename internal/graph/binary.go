package graph

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/paulmach/orb"
)

func init() {
	// Attrs values travel through gob as interface{}; every concrete
	// type that can appear in a node/edge attribute map must be
	// registered up front.
	gob.Register(orb.LineString{})
	gob.Register([][2]string{})
	gob.Register([]string{})
	gob.Register([]float64{})
	gob.Register([]any{})
}

// Binary cache format: an optional fast-reload path alongside the
// canonical GraphML codec. Adapted from the CSR routing-overlay cache
// this toolkit's builder once wrote directly to disk: same magic +
// version header and CRC32 integrity check, but the payload is the
// attributed multigraph's node/edge records (gob-encoded) instead of
// fixed-width CSR arrays, since attribute schemas are open-ended here.
const (
	magicBytes = "STREETGR"
	version    = uint32(1)
)

type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

type nodeRecord struct {
	ID    string
	Attrs map[string]any
}

type edgeRecord struct {
	Key   uint64
	U, V  string
	Attrs map[string]any
}

type payload struct {
	GraphAttrs map[string]any
	Nodes      []nodeRecord
	Edges      []edgeRecord
}

// WriteBinary serializes g to path: an 8-byte magic, version, node/edge
// counts, a gob-encoded payload, and a trailing CRC32 of everything
// preceding it.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("graph: create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	p := payload{GraphAttrs: map[string]any{}}
	for _, k := range []string{"crs", "created_date", "created_with", "simplified"} {
		if v, ok := g.GraphAttr(k); ok {
			p.GraphAttrs[k] = v
		}
	}
	for _, id := range g.Nodes() {
		p.Nodes = append(p.Nodes, nodeRecord{ID: id, Attrs: g.Node(id).Attrs})
	}
	for _, e := range g.Edges() {
		p.Edges = append(p.Edges, edgeRecord{Key: e.Key, U: e.U, V: e.V, Attrs: e.Attrs})
	}

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(&p); err != nil {
		return fmt.Errorf("graph: encode payload: %w", err)
	}

	hdr := fileHeader{Version: version, NumNodes: uint32(len(p.Nodes)), NumEdges: uint32(len(p.Edges))}
	copy(hdr.Magic[:], magicBytes)

	hash := crc32.NewIEEE()
	mw := io.MultiWriter(f, hash)
	if err := binary.Write(mw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("graph: write header: %w", err)
	}
	if _, err := mw.Write(body.Bytes()); err != nil {
		return fmt.Errorf("graph: write payload: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, hash.Sum32()); err != nil {
		return fmt.Errorf("graph: write checksum: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("graph: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("graph: rename temp file: %w", err)
	}
	return nil
}

// ReadBinary loads a graph previously written by WriteBinary,
// verifying the magic, version, and checksum.
func ReadBinary(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: read file: %w", err)
	}
	if len(data) < binary.Size(fileHeader{})+4 {
		return nil, fmt.Errorf("graph: truncated cache file")
	}

	body := data[:len(data)-4]
	wantCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != wantCRC {
		return nil, fmt.Errorf("graph: checksum mismatch")
	}

	r := bytes.NewReader(body)
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("graph: read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("graph: bad magic")
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("graph: unsupported version %d", hdr.Version)
	}

	var p payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("graph: decode payload: %w", err)
	}

	g := New()
	for k, v := range p.GraphAttrs {
		g.SetGraphAttr(k, v)
	}
	for _, n := range p.Nodes {
		g.AddNode(n.ID, n.Attrs)
	}
	for _, e := range p.Edges {
		if _, err := g.AddEdge(e.U, e.V, e.Attrs); err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
	}
	return g, nil
}
