// Command streetgraph-route loads a GraphML street graph and serves
// it over HTTP for shortest-path and k-shortest-path queries.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"streetgraph/internal/codec"
	"streetgraph/internal/httpapi"
	"streetgraph/internal/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.graphml", "Path to a GraphML street graph")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	addSpeeds := flag.Bool("add-speeds", true, "Infer edge speeds and travel times before serving")
	flag.Parse()

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: streetgraph-route --graph <graph.graphml> [--port 8080] [--cors-origin origin]")
		os.Exit(1)
	}

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	data, err := os.ReadFile(*graphPath)
	if err != nil {
		log.Fatalf("Failed to read graph file: %v", err)
	}
	g, err := codec.ReadGraphML(data, nil)
	if err != nil {
		log.Fatalf("Failed to parse graphml: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	if *addSpeeds {
		log.Println("Inferring edge speeds and travel times...")
		routing.AddEdgeSpeeds(g, nil, nil, 0)
		routing.AddEdgeTravelTimes(g)
	}

	log.Println("Building spatial index...")
	handlers := httpapi.NewHandlers(g)

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := httpapi.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	srv := httpapi.NewServer(cfg, handlers)
	if err := httpapi.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
