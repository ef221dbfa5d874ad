// Command streetgraph-build turns a local .osm.pbf extract into a
// simplified, consolidated street graph written out as GraphML.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"streetgraph/internal/builder"
	"streetgraph/internal/codec"
	"streetgraph/internal/config"
	"streetgraph/internal/consolidate"
	"streetgraph/internal/osmio"
	"streetgraph/internal/simplify"
	"streetgraph/internal/stats"
	"streetgraph/internal/truncate"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.graphml", "Output GraphML file path")
	networkType := flag.String("network-type", "drive", "Network type: drive, walk, bike, all")
	consolidateTol := flag.Float64("consolidate", 0, "Consolidation tolerance in meters (0 disables)")
	largestComponent := flag.Bool("largest-component", true, "Restrict output to the largest weakly connected component")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: streetgraph-build --input <file.osm.pbf> [--output graph.graphml] [--network-type drive] [--consolidate meters]")
		os.Exit(1)
	}

	cfg := config.Default()
	start := time.Now()

	log.Println("Opening PBF extract...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	batch, err := osmio.ParsePBF(context.Background(), f)
	if err != nil {
		log.Fatalf("Failed to parse PBF: %v", err)
	}
	log.Printf("Parsed %d elements", len(batch.Elements))

	log.Println("Building graph...")
	g, err := builder.Build(cfg, []osmio.Batch{batch}, builder.Options{NetworkType: *networkType})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	log.Println("Simplifying...")
	if err := simplify.Simplify(g, simplify.DefaultOptions()); err != nil {
		log.Fatalf("Failed to simplify graph: %v", err)
	}
	log.Printf("Simplified graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	if *consolidateTol > 0 {
		log.Printf("Consolidating intersections within %.1fm...", *consolidateTol)
		g = consolidate.Consolidate(g, consolidate.Options{Tolerance: *consolidateTol})
		log.Printf("Consolidated graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())
	}

	if *largestComponent {
		log.Println("Extracting largest weakly connected component...")
		g = truncate.LargestWeaklyConnected(g)
		log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())
	}

	log.Println("Computing stats...")
	length := stats.EdgeLengthTotal(g)
	intersections := stats.IntersectionCount(g, 2)
	log.Printf("Total edge length: %.1fm, intersections: %d", length, intersections)

	log.Printf("Writing GraphML to %s...", *output)
	data, err := codec.WriteGraphML(g)
	if err != nil {
		log.Fatalf("Failed to encode graphml: %v", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f KB)", elapsed.Round(time.Second), *output, float64(info.Size())/1024)
}
