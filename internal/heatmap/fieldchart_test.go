package heatmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
)

func TestRenderFieldChart(t *testing.T) {
	grid := &kriging.Grid{X: []float64{100, 130, 160}, Y: []float64{500, 530}, Cell: 30}
	field := &kriging.Field{
		Rows:     2,
		Cols:     3,
		Values:   []float64{-60, -62, -64, -70, -72, -74},
		Variance: []float64{0, 1, 2, 3, 4, 5},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderFieldChart(&buf, grid, field, "run test"))
	html := buf.String()
	assert.Contains(t, html, "Kriged RSSI (dBm)")
	assert.Contains(t, html, "Kriging variance")
	assert.Contains(t, html, "#fde725")
	assert.Contains(t, html, "run test")
}

func TestChartStride(t *testing.T) {
	assert.Equal(t, 1, chartStride(10, 200))
	assert.Equal(t, 2, chartStride(201, 3))
	assert.Equal(t, 3, chartStride(2, 450))
}
