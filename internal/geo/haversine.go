// Package geo provides pure great-circle distance computation over a
// spherical Earth model.
package geo

import (
	"math"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// EarthRadiusMeters is the Earth's radius at the equator, matching the
// spherical approximation used for geography-typed coordinates.
const EarthRadiusMeters = 6378137.0

// Haversine returns the great-circle distance in meters between two
// coordinates given in decimal degrees. The function is deterministic and
// symmetric: Haversine(a, b) == Haversine(b, a), and Haversine(a, a) == 0.
func Haversine(a, b models.Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dlat := radians(b.Latitude - a.Latitude)
	dlon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dlat / 2)
	sinLon := math.Sin(dlon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Asin(math.Sqrt(h))

	return EarthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
