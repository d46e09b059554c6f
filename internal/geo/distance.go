package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle
// distances.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in metres between two WGS84
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Bearing returns the initial bearing from point 1 to point 2 in degrees,
// normalised to [0, 360), where 0 is north and 90 is east.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()
	y := math.Sin(lonDiff) * math.Cos(p2.Lat.Radians())
	x := math.Cos(p1.Lat.Radians())*math.Sin(p2.Lat.Radians()) -
		math.Sin(p1.Lat.Radians())*math.Cos(p2.Lat.Radians())*math.Cos(lonDiff)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// AngleDiff returns the absolute angular separation of two headings in
// degrees, in [0, 180].
func AngleDiff(a, b float64) float64 {
	return math.Abs(math.Mod(a-b+180+360*4, 360) - 180)
}
