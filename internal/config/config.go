// Package config collects the toolkit's settings into a single
// immutable struct, passed into collaborator constructors instead of
// being read from process globals (see the "Global mutable settings"
// redesign note).
package config

import (
	"log"
	"os"
	"time"
)

// Config holds the immutable settings shared by the builder, the
// geocoder/fetcher collaborators, and the CLI entry points.
type Config struct {
	// UserAgent is sent on every outbound request to the map service
	// and the gazetteer.
	UserAgent string

	// Timeout bounds a single outbound HTTP request.
	Timeout time.Duration

	// DefaultCRS is stamped on graphs built without an explicit CRS.
	DefaultCRS string

	// CreatedWith is the product tag stamped on graph-level attributes.
	CreatedWith string

	// BidirectionalNetworkTypes names network types for which the
	// builder's oneway rule (ii) forces bidirectional treatment
	// regardless of the oneway tag.
	BidirectionalNetworkTypes map[string]bool

	// AllOneway forces oneway rule (i): treat every way as oneway.
	AllOneway bool

	// OnewayValues is the tag-value set recognized as "oneway=true".
	OnewayValues map[string]bool

	// ReversedOnewayValues is the subset of OnewayValues whose node
	// sequence must be reversed before edge emission.
	ReversedOnewayValues map[string]bool

	// QueryAreaCeilingM2 bounds the area of a single fetch polygon; the
	// caller's fetcher collaborator is expected to tile larger areas.
	QueryAreaCeilingM2 float64

	// Logger receives level-tagged progress and warning lines. Callers
	// may redirect it to a file or discard it; nil falls back to the
	// standard logger.
	Logger *log.Logger
}

// Default returns the toolkit's baseline configuration.
func Default() *Config {
	return &Config{
		UserAgent:   "streetgraph/1.0",
		Timeout:     30 * time.Second,
		DefaultCRS:  "epsg:4326",
		CreatedWith: "streetgraph 1.0",
		BidirectionalNetworkTypes: map[string]bool{
			"walk": true,
			"bike": true,
		},
		OnewayValues: map[string]bool{
			"yes": true, "true": true, "1": true,
			"-1": true, "reverse": true, "T": true, "F": true,
		},
		ReversedOnewayValues: map[string]bool{
			"-1": true, "reverse": true, "T": true,
		},
		QueryAreaCeilingM2: 25_000_000_000, // ~25,000 km^2
		Logger:             log.New(os.Stderr, "", log.LstdFlags),
	}
}

// logf writes a level-tagged line through c.Logger, falling back to
// the standard logger when c or c.Logger is nil.
func (c *Config) logf(level, format string, args ...any) {
	l := log.Default()
	if c != nil && c.Logger != nil {
		l = c.Logger
	}
	l.Printf("%s: "+format, append([]any{level}, args...)...)
}

// Infof logs an INFO-level line.
func (c *Config) Infof(format string, args ...any) { c.logf("INFO", format, args...) }

// Warnf logs a WARNING-level line.
func (c *Config) Warnf(format string, args ...any) { c.logf("WARNING", format, args...) }

// Errorf logs an ERROR-level line.
func (c *Config) Errorf(format string, args ...any) { c.logf("ERROR", format, args...) }
