package geospatial

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// NoPredecessor labels the first waypoint of a sequence, which has no leg before it.
const NoPredecessor = "--"

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(a, 1)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Distance returns the great-circle distance in meters between two lon/lat points.
func Distance(a, b orb.Point) float64 {
	return Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// ComputeDistances returns one label per point: NoPredecessor for the first,
// then the leg length from the previous point in meters with two decimals.
func ComputeDistances(points []orb.Point) []string {
	labels := make([]string, len(points))
	for i := range points {
		if i == 0 {
			labels[i] = NoPredecessor
			continue
		}
		labels[i] = FormatMeters(Distance(points[i-1], points[i]))
	}
	return labels
}

// FormatMeters renders a distance with fixed two-decimal precision.
func FormatMeters(m float64) string {
	return strconv.FormatFloat(m, 'f', 2, 64)
}

// PathLength sums the leg lengths of a polyline in meters.
func PathLength(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Distance(ls[i-1], ls[i])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
