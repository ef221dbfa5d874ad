package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Raffles Place to Changi Airport",
			lat1: 1.2830, lon1: 103.8513,
			lat2: 1.3644, lon2: 103.9915,
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name: "same point",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Haversine(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			tol := tc.wantMeters * tc.tolerancePercent / 100
			if math.Abs(got-tc.wantMeters) > tol+1e-6 {
				t.Errorf("Haversine() = %.1f, want %.1f (+/- %.1f)", got, tc.wantMeters, tol)
			}
		})
	}
}

func TestHaversineColinearDegrees(t *testing.T) {
	// Seed scenario 2: nodes at (0,0),(0,1),(0,2),(0,3) in lat/lon
	// degrees; each hop should be the same great-circle distance.
	d1 := Haversine(0, 0, 1, 0)
	d2 := Haversine(1, 0, 2, 0)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("equal-spaced hops should have equal length: %.6f vs %.6f", d1, d2)
	}
}

func TestEuclidean(t *testing.T) {
	got := Euclidean(0, 0, 3, 4)
	if got != 5 {
		t.Errorf("Euclidean(0,0,3,4) = %v, want 5", got)
	}
}

func TestBearingCardinal(t *testing.T) {
	// Due north: same longitude, increasing latitude.
	got := Bearing(0, 0, 1, 0)
	if math.Abs(got-0) > 1e-6 {
		t.Errorf("Bearing due north = %.6f, want 0", got)
	}
	// Due east: same latitude, increasing longitude.
	got = Bearing(0, 0, 0, 1)
	if math.Abs(got-90) > 1e-6 {
		t.Errorf("Bearing due east = %.6f, want 90", got)
	}
}

func TestBBoxFromPoint(t *testing.T) {
	north, south, east, west := BBoxFromPoint(1.35, 103.8, 1000)
	if !(north > 1.35 && south < 1.35 && east > 103.8 && west < 103.8) {
		t.Errorf("bbox %v,%v,%v,%v does not bracket center point", north, south, east, west)
	}
}

func TestPointToSegmentDistEndpoint(t *testing.T) {
	// Point coincident with segment start should have zero distance.
	d, ratio := PointToSegmentDist(1.0, 103.0, 1.0, 103.0, 1.1, 103.0)
	if d > 1e-6 {
		t.Errorf("distance at endpoint = %v, want ~0", d)
	}
	if ratio != 0 {
		t.Errorf("ratio at start endpoint = %v, want 0", ratio)
	}
}

func TestUTMZone(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{0, 32631},
		{-180, 32601},
		{179.9999, 32660},
		{6, 32632},
	}
	for _, tc := range tests {
		if got := UTMZone(0, tc.lon); got != tc.want {
			t.Errorf("UTMZone(_, %v) = %d, want %d", tc.lon, got, tc.want)
		}
	}
}
