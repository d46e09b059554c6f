// Package geo converts survey coordinates between WGS84 and the planar
// Web Mercator frame the interpolator works in, and provides the
// great-circle helpers used by the profile plots.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// MaxMercatorLat bounds the latitudes EPSG:3857 is defined for. The
// projection is square at this latitude.
const MaxMercatorLat = 85.05112878

// ErrOutsideMercator reports a latitude beyond MaxMercatorLat.
var ErrOutsideMercator = errors.New("latitude outside the Web Mercator domain")

// InMercatorDomain reports whether lat can be projected without clamping.
func InMercatorDomain(lat float64) bool {
	return math.Abs(lat) <= MaxMercatorLat
}

// ToMercator projects a WGS84 coordinate onto EPSG:3857 metres. Latitudes
// beyond ±MaxMercatorLat are clamped to the edge of the projection, so the
// result only round-trips through FromMercator inside that domain.
func ToMercator(lat, lon float64) orb.Point {
	return project.WGS84.ToMercator(orb.Point{lon, lat})
}

// FromMercator is the inverse of ToMercator.
func FromMercator(p orb.Point) (lat, lon float64) {
	ll := project.Mercator.ToWGS84(p)
	return ll.Lat(), ll.Lon()
}

// ProjectSamples projects every sample and returns the planar points, in
// sample order, together with their bounding box. A sample outside the
// Mercator domain fails with ErrOutsideMercator.
func ProjectSamples(samples []telemetry.Sample) ([]kriging.Point, orb.Bound, error) {
	if len(samples) == 0 {
		return nil, orb.Bound{}, fmt.Errorf("no samples to project")
	}
	pts := make([]kriging.Point, len(samples))
	var bound orb.Bound
	for i, s := range samples {
		if !InMercatorDomain(s.Lat) {
			return nil, orb.Bound{}, fmt.Errorf("sample %d at latitude %v: %w", i, s.Lat, ErrOutsideMercator)
		}
		p := ToMercator(s.Lat, s.Lon)
		if math.IsNaN(p.X()) || math.IsInf(p.X(), 0) || math.IsNaN(p.Y()) || math.IsInf(p.Y(), 0) {
			return nil, orb.Bound{}, fmt.Errorf("sample %d (%v, %v) does not project to a finite point", i, s.Lat, s.Lon)
		}
		pts[i] = kriging.Point{X: p.X(), Y: p.Y(), Value: s.RSSI}
		if i == 0 {
			bound = p.Bound()
		} else {
			bound = bound.Extend(p)
		}
	}
	return pts, bound, nil
}

// Median returns the median of values, averaging the two middle elements
// for even lengths. It returns NaN for an empty slice and does not modify
// its argument.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
