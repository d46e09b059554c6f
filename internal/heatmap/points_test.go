package heatmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

func TestFromField(t *testing.T) {
	origin := geo.ToMercator(53.2680, -0.5300)
	grid := &kriging.Grid{
		X:    []float64{origin.X(), origin.X() + 30},
		Y:    []float64{origin.Y(), origin.Y() + 30},
		Cell: 30,
	}
	field := &kriging.Field{Rows: 2, Cols: 2, Values: []float64{-60, -150, -75, -10}}

	pts := FromField(grid, field, PolicyClip)
	require.Len(t, pts, 3, "the clipped-to-zero cell is dropped")

	assert.InDelta(t, 53.2680, pts[0].Lat, 1e-9)
	assert.InDelta(t, -0.5300, pts[0].Lon, 1e-9)
	assert.InDelta(t, 80.0/130, pts[0].Weight, 1e-12)
	assert.Greater(t, pts[1].Lat, pts[0].Lat, "second row is further north")
	assert.Equal(t, 1.0, pts[2].Weight)
}

func TestFromSamples(t *testing.T) {
	samples := []telemetry.Sample{
		{RSSI: -60, Lat: 53.1, Lon: -0.5},
		{RSSI: -120, Lat: 53.2, Lon: -0.5},
	}
	pts := FromSamples(samples, PolicyShift)
	require.Len(t, pts, 1)
	assert.Equal(t, HeatPoint{Lat: 53.1, Lon: -0.5, Weight: 40}, pts[0])
}

func TestBinSamples(t *testing.T) {
	// Two samples a metre apart share a 5 m cell; the third is alone.
	a := geo.ToMercator(53.2680, -0.5300)
	latB, lonB := geo.FromMercator(orb.Point{a.X() + 1, a.Y() + 1})
	latC, lonC := geo.FromMercator(orb.Point{a.X() + 42, a.Y() + 2})
	samples := []telemetry.Sample{
		{RSSI: -60, Lat: 53.2680, Lon: -0.5300},
		{RSSI: -70, Lat: latB, Lon: lonB},
		{RSSI: -50, Lat: latC, Lon: lonC},
	}

	cells := BinSamples(samples, 5, 2)
	require.Len(t, cells, 1)
	assert.Equal(t, 2, cells[0].Count)
	assert.InDelta(t, -65, cells[0].MeanRSSI, 1e-9)
	centre := geo.ToMercator(cells[0].Lat, cells[0].Lon)
	assert.InDelta(t, a.X()+0.5, centre.X(), 1e-6)

	all := BinSamples(samples, 5, 1)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].Col)
	assert.Equal(t, 8, all[1].Col)

	weights := FromCells(all, PolicyShift)
	assert.Equal(t, 35.0, weights[0].Weight)
	assert.Equal(t, 50.0, weights[1].Weight)

	assert.Nil(t, BinSamples(nil, 5, 1))
	assert.Nil(t, BinSamples(samples, 0, 1))
}
