// Package survey runs the RSSI survey pipelines end to end: load a
// telemetry CSV, krige it onto a grid and write the map artefacts.
package survey

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/config"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/heatmap"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/monitoring"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// Options configures one kriged heatmap run.
type Options struct {
	InputPath     string
	OutputPath    string
	GridCellSizeM float64

	HeatRadius     int
	HeatBlur       int
	HeatMinOpacity float64
	HeatMaxZoom    int
	Weighting      heatmap.Policy

	// Center overrides the map centre; nil centres on the median sample.
	Center    *[2]float64
	Zoom      int
	Satellite bool

	// Fitter derives the covariance model. Nil fits every variogram family.
	Fitter  kriging.Fitter
	Kriging kriging.Options

	// Optional extra artefacts, skipped when empty.
	FieldChartPath string
	PointMapPath   string
	MetricsPath    string
}

// DefaultOptions returns the options of a run with no configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.EmptySurveyConfig())
}

// OptionsFromConfig resolves cfg, applying defaults for unset fields.
func OptionsFromConfig(cfg *config.SurveyConfig) Options {
	o := Options{
		InputPath:      cfg.GetInputPath(),
		OutputPath:     cfg.GetOutputPath(),
		GridCellSizeM:  cfg.GetGridCellSizeM(),
		HeatRadius:     cfg.GetHeatRadius(),
		HeatBlur:       cfg.GetHeatBlur(),
		HeatMinOpacity: cfg.GetHeatMinOpacity(),
		HeatMaxZoom:    cfg.GetHeatMaxZoom(),
		Weighting:      cfg.GetWeighting(),
		Zoom:           cfg.GetMapZoom(),
		Satellite:      cfg.GetSatellite(),
		Fitter: kriging.VariogramFitter{
			Family:     cfg.GetVariogramModel(),
			Bins:       cfg.GetVariogramBins(),
			MaxSamples: cfg.GetVariogramMaxSamples(),
		},
		Kriging: kriging.Options{
			Neighbours: cfg.GetKrigingNeighbours(),
			Variance:   cfg.GetComputeVariance(),
		},
		FieldChartPath: cfg.GetFieldChartPath(),
		PointMapPath:   cfg.GetPointMapPath(),
		MetricsPath:    cfg.GetMetricsPath(),
	}
	if c, ok := cfg.GetMapCenter(); ok {
		o.Center = &c
	}
	return o
}

// Result summarises a completed run.
type Result struct {
	RunID      string
	Loaded     int
	Dropped    int
	Model      kriging.Model
	Strategy   kriging.Strategy
	Fallback   bool
	Rows, Cols int
	HeatPoints int
	Centre     [2]float64
	Outputs    []string
}

// Run executes the heatmap pipeline. Nothing is written until every stage
// has succeeded; each artefact is then moved into place atomically.
func Run(fsys fsutil.FileSystem, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	metrics := monitoring.NewRunMetrics()

	start := time.Now()
	table, err := telemetry.LoadSamples(fsys, opts.InputPath)
	if err != nil {
		return nil, err
	}
	table.DropOutOfRange()
	if n := table.DropWhere(func(s telemetry.Sample) bool { return !geo.InMercatorDomain(s.Lat) }); n > 0 {
		monitoring.Logf("[%s] dropped %d samples beyond ±%g° latitude", res.RunID, n, geo.MaxMercatorLat)
	}
	res.Loaded, res.Dropped = table.Len(), table.Dropped
	metrics.RowsLoaded.Set(float64(res.Loaded))
	metrics.RowsDropped.Set(float64(res.Dropped))
	metrics.ObserveStage("load", start)
	monitoring.Logf("[%s] loaded %d samples from %s (%d dropped)", res.RunID, res.Loaded, opts.InputPath, res.Dropped)

	start = time.Now()
	points, bound, err := geo.ProjectSamples(table.Samples)
	if err != nil {
		return nil, fmt.Errorf("failed to project samples: %w", err)
	}
	grid, err := kriging.NewGrid(bound, opts.GridCellSizeM)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	res.Rows, res.Cols = grid.Shape()
	metrics.GridCells.Set(float64(grid.Len()))
	metrics.ObserveStage("project", start)

	start = time.Now()
	fitter := opts.Fitter
	if fitter == nil {
		fitter = kriging.VariogramFitter{}
	}
	interp, err := kriging.Interpolate(points, grid, fitter, opts.Kriging)
	if err != nil {
		return nil, err
	}
	res.Model, res.Strategy, res.Fallback = interp.Model, interp.Strategy, interp.Fallback
	if res.Fallback {
		metrics.ModelFallback.Set(1)
	}
	metrics.ObserveStage("krige", start)
	monitoring.Logf("[%s] kriged %dx%d grid with %s model %s", res.RunID, res.Rows, res.Cols, res.Strategy, res.Model)

	start = time.Now()
	heat := heatmap.FromField(grid, interp.Field, opts.Weighting)
	res.HeatPoints = len(heat)
	metrics.HeatPoints.Set(float64(res.HeatPoints))
	res.Centre = medianCentre(table.Samples)
	if opts.Center != nil {
		res.Centre = *opts.Center
	}

	outputs := map[string][]byte{}
	var order []string
	add := func(path string, data []byte) {
		order = append(order, path)
		outputs[path] = data
	}

	var page bytes.Buffer
	doc := &heatmap.MapDocument{
		Title:     "RSSI heatmap (kriged)",
		Center:    res.Centre,
		Zoom:      opts.Zoom,
		Satellite: opts.Satellite,
		Heat: &heatmap.HeatLayer{
			Points:     heat,
			Radius:     opts.HeatRadius,
			Blur:       opts.HeatBlur,
			MinOpacity: opts.HeatMinOpacity,
			MaxZoom:    opts.HeatMaxZoom,
		},
	}
	if err := heatmap.RenderMap(&page, doc); err != nil {
		return nil, err
	}
	add(opts.OutputPath, page.Bytes())

	if opts.FieldChartPath != "" {
		var chart bytes.Buffer
		subtitle := fmt.Sprintf("%s model %s, %g m cells", res.Strategy, res.Model, opts.GridCellSizeM)
		if err := heatmap.RenderFieldChart(&chart, grid, interp.Field, subtitle); err != nil {
			return nil, err
		}
		add(opts.FieldChartPath, chart.Bytes())
	}
	if opts.PointMapPath != "" {
		var pm bytes.Buffer
		if err := renderPointMap(&pm, table.Samples, opts.Satellite); err != nil {
			return nil, err
		}
		add(opts.PointMapPath, pm.Bytes())
	}
	metrics.ObserveStage("render", start)

	for _, path := range order {
		if err := fsutil.WriteFileAtomic(fsys, path, outputs[path], 0644); err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, path)
		monitoring.Logf("[%s] wrote %s", res.RunID, path)
	}

	if opts.MetricsPath != "" {
		if err := metrics.WriteTextfile(fsys, opts.MetricsPath); err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, opts.MetricsPath)
	}
	return res, nil
}

// medianCentre returns the median latitude and longitude of samples.
func medianCentre(samples []telemetry.Sample) [2]float64 {
	t := telemetry.Table{Samples: samples}
	return [2]float64{geo.Median(t.Lats()), geo.Median(t.Lons())}
}
