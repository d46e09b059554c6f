package heatmap

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// Cell is one occupied square of a binned survey.
type Cell struct {
	Col, Row int
	Lat, Lon float64 // centroid of the member samples
	MeanRSSI float64
	Count    int
}

// BinSamples groups samples into square cells of size metres in Web
// Mercator, anchored at the minimum projected coordinate, and averages RSSI
// and position per cell. Cells with fewer than minCount samples are
// discarded. Cells are returned ordered by column, then row.
func BinSamples(samples []telemetry.Sample, size float64, minCount int) []Cell {
	if len(samples) == 0 || !(size > 0) {
		return nil
	}
	pts := make([]orb.Point, len(samples))
	minX, minY := math.Inf(1), math.Inf(1)
	for i, s := range samples {
		pts[i] = geo.ToMercator(s.Lat, s.Lon)
		minX = math.Min(minX, pts[i].X())
		minY = math.Min(minY, pts[i].Y())
	}

	type acc struct {
		sumX, sumY, sumRSSI float64
		n                   int
	}
	cells := make(map[[2]int]*acc)
	for i, p := range pts {
		key := [2]int{int(math.Floor((p.X() - minX) / size)), int(math.Floor((p.Y() - minY) / size))}
		a := cells[key]
		if a == nil {
			a = &acc{}
			cells[key] = a
		}
		a.sumX += p.X()
		a.sumY += p.Y()
		a.sumRSSI += samples[i].RSSI
		a.n++
	}

	out := make([]Cell, 0, len(cells))
	for key, a := range cells {
		if a.n < minCount {
			continue
		}
		n := float64(a.n)
		lat, lon := geo.FromMercator(orb.Point{a.sumX / n, a.sumY / n})
		out = append(out, Cell{
			Col:      key[0],
			Row:      key[1],
			Lat:      lat,
			Lon:      lon,
			MeanRSSI: a.sumRSSI / n,
			Count:    a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Col != out[j].Col {
			return out[i].Col < out[j].Col
		}
		return out[i].Row < out[j].Row
	})
	return out
}

// FromCells weights binned cells by their mean RSSI.
func FromCells(cells []Cell, policy Policy) []HeatPoint {
	out := make([]HeatPoint, 0, len(cells))
	for _, c := range cells {
		if w := policy.Weight(c.MeanRSSI); w > 0 {
			out = append(out, HeatPoint{Lat: c.Lat, Lon: c.Lon, Weight: w})
		}
	}
	return out
}
