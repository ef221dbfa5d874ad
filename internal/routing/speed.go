package routing

import (
	"math"
	"strconv"
	"strings"

	"streetgraph/internal/graph"
)

// mphToKph is the conversion factor applied to "mph"-suffixed maxspeed
// values.
const mphToKph = 1.60934

// regionDefaultsKph gives an implicit speed when maxspeed names a
// regional zone keyword instead of a number (e.g. "DE:rural"). A
// caller-supplied table overrides entries here.
var regionDefaultsKph = map[string]float64{
	"DE:rural":      100,
	"DE:urban":      50,
	"DE:motorway":   120,
	"FR:rural":      80,
	"FR:urban":      50,
	"GB:nsl_single":  96.6,
	"GB:nsl_dual":    112.7,
	"walk":           5,
	"none":           120,
}

// ParseMaxspeed parses one OSM maxspeed value into km/h. Values may be
// a bare number (km/h), "N mph", or a region keyword resolved via
// regionDefaults (falling back to the package default table). Returns
// false if unparsable.
func ParseMaxspeed(raw string, regionDefaults map[string]float64) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if strings.HasSuffix(raw, "mph") {
		numPart := strings.TrimSpace(strings.TrimSuffix(raw, "mph"))
		v, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0, false
		}
		return v * mphToKph, true
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, true
	}
	if regionDefaults != nil {
		if v, ok := regionDefaults[raw]; ok {
			return v, true
		}
	}
	if v, ok := regionDefaultsKph[raw]; ok {
		return v, true
	}
	return 0, false
}

// parseMaxspeedMean parses a maxspeed tag that may be a single value
// or a "|"-separated list (OSM's convention for per-lane speeds),
// returning the mean of the values that parsed.
func parseMaxspeedMean(raw string, regionDefaults map[string]float64) (float64, bool) {
	parts := strings.Split(raw, "|")
	var sum float64
	var n int
	for _, p := range parts {
		if v, ok := ParseMaxspeed(p, regionDefaults); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// AddEdgeSpeeds fills in a speed_kph attribute on every edge: parsed
// from maxspeed where possible, else the caller's hwFallbackOverrides
// entry for the edge's highway class, else the mean of parsed speeds
// for edges sharing that class, else the mean of all parsed speeds
// (globalFallbackKph when no edge has a parsable maxspeed).
func AddEdgeSpeeds(g *graph.Graph, hwFallbackOverrides map[string]float64, regionDefaults map[string]float64, globalFallbackKph float64) {
	classSum := make(map[string]float64)
	classCount := make(map[string]int)
	var globalSum float64
	var globalCount int

	type pending struct {
		e     *graph.Edge
		class string
	}
	var unresolved []pending

	for _, e := range g.Edges() {
		class, _ := e.Attrs["highway"].(string)

		if raw, ok := e.Attrs["maxspeed"].(string); ok {
			if v, ok := parseMaxspeedMean(raw, regionDefaults); ok {
				e.Attrs["speed_kph"] = v
				classSum[class] += v
				classCount[class]++
				globalSum += v
				globalCount++
				continue
			}
		}
		unresolved = append(unresolved, pending{e, class})
	}

	for class, override := range hwFallbackOverrides {
		classSum[class] = override * float64(maxInt(classCount[class], 1))
		classCount[class] = maxInt(classCount[class], 1)
	}

	globalMean := globalFallbackKph
	if globalCount > 0 {
		globalMean = globalSum / float64(globalCount)
	}

	for _, p := range unresolved {
		if override, ok := hwFallbackOverrides[p.class]; ok {
			p.e.Attrs["speed_kph"] = override
			continue
		}
		if n := classCount[p.class]; n > 0 {
			p.e.Attrs["speed_kph"] = classSum[p.class] / float64(n)
			continue
		}
		p.e.Attrs["speed_kph"] = globalMean
	}
}

// AddEdgeTravelTimes stamps travel_time (seconds) on every edge whose
// length and speed_kph are both finite and whose speed is positive:
// travel_time = (length_m/1000) / (speed_kph/3600).
func AddEdgeTravelTimes(g *graph.Graph) {
	for _, e := range g.Edges() {
		length, lenOK := EdgeWeight(e, "length")
		speed, spdOK := EdgeWeight(e, "speed_kph")
		if !lenOK || !spdOK || speed <= 0 || math.IsNaN(length) {
			continue
		}
		hours := (length / 1000) / speed
		e.Attrs["travel_time"] = hours * 3600
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
