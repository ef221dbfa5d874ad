// Package geo is the geometry kernel: great-circle and planar distance,
// bearing, bbox-from-point, linestring length/interpolation, and UTM
// zone selection. All distances are meters unless noted; bounding
// boxes are always returned as [north, south, east, west].
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean earth radius used by Haversine,
// matching the value the spec pins for cross-implementation parity.
const EarthRadiusMeters = 6_371_009.0

// Haversine returns the great-circle distance in meters between two
// lat/lon points in degrees. The intermediate value h is clamped to
// [0,1] to guard against NaN from floating point overshoot at
// near-antipodal or coincident points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	} else if h < 0 {
		h = 0
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Euclidean returns the planar distance between two (x,y) points,
// used when the graph CRS is projected.
func Euclidean(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Bearing returns the initial compass bearing in degrees, [0,360),
// from (lat1,lon1) to (lat2,lon2).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2r)
	x := math.Cos(lat1r)*math.Sin(lat2r) - math.Sin(lat1r)*math.Cos(lat2r)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// destinationPoint returns the point reached by travelling distMeters
// from (lat,lon) along bearingDeg, using the spherical direct formula.
func destinationPoint(lat, lon, bearingDeg, distMeters float64) (destLat, destLon float64) {
	angDist := distMeters / EarthRadiusMeters
	lat1 := lat * math.Pi / 180
	lon1 := lon * math.Pi / 180
	brng := bearingDeg * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angDist) + math.Cos(lat1)*math.Sin(angDist)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(angDist)*math.Cos(lat1),
		math.Cos(angDist)-math.Sin(lat1)*math.Sin(lat2),
	)
	return lat2 * 180 / math.Pi, lon2 * 180 / math.Pi
}

// BBoxFromPoint returns [north, south, east, west] for a square bbox
// centered at (lat,lon) whose sides are distMeters from the center,
// computed via destination offsets at 0/90/180/270 degrees.
func BBoxFromPoint(lat, lon, distMeters float64) (north, south, east, west float64) {
	north, _ = destinationPoint(lat, lon, 0, distMeters)
	_, east = destinationPoint(lat, lon, 90, distMeters)
	south, _ = destinationPoint(lat, lon, 180, distMeters)
	_, west = destinationPoint(lat, lon, 270, distMeters)
	return north, south, east, west
}

// LineLength returns the total great-circle arc length in meters of a
// linestring whose points are [lon,lat] (orb.LineString's [x,y] order).
func LineLength(ls orb.LineString) float64 {
	var total float64
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		total += Haversine(a[1], a[0], b[1], b[0])
	}
	return total
}

// InterpolatePoint returns the point a fraction frac∈[0,1] of the way
// along the linestring's arc length, measuring distance with Haversine.
func InterpolatePoint(ls orb.LineString, frac float64) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 || frac <= 0 {
		return ls[0]
	}
	if frac >= 1 {
		return ls[len(ls)-1]
	}

	total := LineLength(ls)
	target := total * frac

	var accum float64
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		segLen := Haversine(a[1], a[0], b[1], b[0])
		if accum+segLen >= target && segLen > 0 {
			t := (target - accum) / segLen
			return orb.Point{
				a[0] + t*(b[0]-a[0]),
				a[1] + t*(b[1]-a[1]),
			}
		}
		accum += segLen
	}
	return ls[len(ls)-1]
}

// PointToSegmentDist returns the distance in meters from point P to
// segment AB and the projection ratio along AB, clamped to [0,1].
// Uses an equirectangular projection centered on the segment, which is
// accurate enough for snapping decisions without the cost of repeated
// Haversine evaluations along the projection.
func PointToSegmentDist(pLat, pLon, aLat, aLon, bLat, bLon float64) (dist, ratio float64) {
	if aLat == bLat && aLon == bLon {
		return Haversine(pLat, pLon, aLat, aLon), 0
	}

	cosLat := math.Cos((aLat + bLat) / 2 * math.Pi / 180)
	ax, ay := aLon*cosLat, aLat
	bx, by := bLon*cosLat, bLat
	px, py := pLon*cosLat, pLat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Haversine(pLat, pLon, aLat, aLon), 0
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closeLat := aLat + t*(bLat-aLat)
	closeLon := aLon + t*(bLon-aLon)
	return Haversine(pLat, pLon, closeLat, closeLon), t
}

// PointToSegmentDistEuclid returns the planar distance from point P to
// segment AB in projected (x,y) coordinates, with the same clamped
// projection-ratio semantics as PointToSegmentDist.
func PointToSegmentDistEuclid(px, py, ax, ay, bx, by float64) (dist, ratio float64) {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Euclidean(px, py, ax, ay), 0
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closeX := ax + t*dx
	closeY := ay + t*dy
	return Euclidean(px, py, closeX, closeY), t
}

// BufferPolygon returns a polygon approximating p expanded outward by
// distMeters, by projecting each vertex's local neighborhood offset
// through the destination-point formula. Intended for small buffers
// (consolidation tolerances, quadrat padding), not general cartographic
// buffering.
func BufferPolygon(p orb.Polygon, distMeters float64) orb.Polygon {
	if distMeters <= 0 || len(p) == 0 {
		return p
	}
	out := make(orb.Polygon, len(p))
	for ri, ring := range p {
		newRing := make(orb.Ring, len(ring))
		for i, pt := range ring {
			lon, lat := pt[0], pt[1]
			// Push each vertex outward along the bearing from the
			// ring's centroid, an approximation adequate for the
			// small tolerances this toolkit buffers by.
			cLat, cLon := ringCentroid(ring)
			brng := Bearing(cLat, cLon, lat, lon)
			nLat, nLon := destinationPoint(lat, lon, brng, distMeters)
			newRing[i] = orb.Point{nLon, nLat}
		}
		out[ri] = newRing
	}
	return out
}

func ringCentroid(ring orb.Ring) (lat, lon float64) {
	if len(ring) == 0 {
		return 0, 0
	}
	var sumLat, sumLon float64
	for _, pt := range ring {
		sumLon += pt[0]
		sumLat += pt[1]
	}
	n := float64(len(ring))
	return sumLat / n, sumLon / n
}

// UTMZone returns the EPSG code for the UTM zone covering centerLon,
// hemisphere selected by the sign of centerLat, per the formula:
// zone = floor((lon+180)/6)+1, code = 32600+zone north / 32700+zone south.
func UTMZone(centerLat, centerLon float64) int {
	zone := int(math.Floor((centerLon+180)/6)) + 1
	if centerLat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}
