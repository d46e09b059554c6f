package heatmap

import (
	"github.com/paulmach/orb"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// HeatPoint is one weighted location on the heat overlay.
type HeatPoint struct {
	Lat    float64
	Lon    float64
	Weight float64
}

// FromField converts every cell of a kriged field back to WGS84 and weights
// it with policy. Cells with a non-positive weight are dropped.
func FromField(grid *kriging.Grid, field *kriging.Field, policy Policy) []HeatPoint {
	out := make([]HeatPoint, 0, len(field.Values))
	for i, v := range field.Values {
		w := policy.Weight(v)
		if !(w > 0) {
			continue
		}
		x, y := grid.At(i)
		lat, lon := geo.FromMercator(orb.Point{x, y})
		out = append(out, HeatPoint{Lat: lat, Lon: lon, Weight: w})
	}
	return out
}

// FromSamples weights raw samples directly, without interpolation.
func FromSamples(samples []telemetry.Sample, policy Policy) []HeatPoint {
	out := make([]HeatPoint, 0, len(samples))
	for _, s := range samples {
		if w := policy.Weight(s.RSSI); w > 0 {
			out = append(out, HeatPoint{Lat: s.Lat, Lon: s.Lon, Weight: w})
		}
	}
	return out
}
