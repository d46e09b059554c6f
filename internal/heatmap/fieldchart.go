package heatmap

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
)

// maxChartAxis caps the cells drawn along each chart axis.
const maxChartAxis = 200

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderFieldChart writes an ECharts page with the kriged field as a grid
// heatmap and, when present, a second chart of the kriging variance. Axes
// are labelled in metres from the grid origin; large grids are strided.
func RenderFieldChart(w io.Writer, grid *kriging.Grid, field *kriging.Field, subtitle string) error {
	page := components.NewPage()
	page.PageTitle = "Kriged RSSI field"

	page.AddCharts(fieldHeatMap(grid, field.Values, field.Cols, "Kriged RSSI (dBm)", subtitle))
	if field.Variance != nil {
		page.AddCharts(fieldHeatMap(grid, field.Variance, field.Cols, "Kriging variance (dBm²)", subtitle))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render field chart: %w", err)
	}
	return nil
}

func fieldHeatMap(grid *kriging.Grid, values []float64, cols int, title, subtitle string) *charts.HeatMap {
	rows := len(values) / cols
	stride := chartStride(rows, cols)

	xLabels := make([]string, 0, cols/stride+1)
	for c := 0; c < cols; c += stride {
		xLabels = append(xLabels, strconv.FormatFloat(grid.X[c]-grid.X[0], 'f', 0, 64))
	}
	yLabels := make([]string, 0, rows/stride+1)
	for r := 0; r < rows; r += stride {
		yLabels = append(yLabels, strconv.FormatFloat(grid.Y[r]-grid.Y[0], 'f', 0, 64))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.HeatMapData, 0, len(xLabels)*len(yLabels))
	for r, yi := 0, 0; r < rows; r, yi = r+stride, yi+1 {
		for c, xi := 0, 0; c < cols; c, xi = c+stride, xi+1 {
			v := values[r*cols+c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, math.Round(v*100) / 100}})
		}
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xLabels, Name: "East (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels, Name: "North (m)", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries(title, data)
	return hm
}

// chartStride returns the cell step that keeps both axes within
// maxChartAxis labels.
func chartStride(rows, cols int) int {
	if m := max(rows, cols); m > maxChartAxis {
		return int(math.Ceil(float64(m) / maxChartAxis))
	}
	return 1
}
