package survey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/config"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/heatmap"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/monitoring"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/testutil"
)

func quiet(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func testOptions(in, out string) Options {
	o := DefaultOptions()
	o.InputPath = in
	o.OutputPath = out
	return o
}

func TestRunThreeSamples(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteFile(t, fsys, "walk.csv", testutil.SurveyCSV(testutil.ThreeSampleRows...))

	opts := testOptions("walk.csv", "map.html")
	res, err := Run(fsys, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Loaded)
	assert.Equal(t, 0, res.Dropped)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"map.html"}, res.Outputs)
	require.Greater(t, res.HeatPoints, 0)

	// Recompute the heat layer to check every weight and position.
	table := testutil.ThreeSampleRows
	points := make([]kriging.Point, len(table))
	for i, r := range table {
		p := geo.ToMercator(r[1], r[2])
		points[i] = kriging.Point{X: p.X(), Y: p.Y(), Value: r[0]}
	}
	bound := geo.ToMercator(table[0][1], table[0][2]).Bound()
	for _, r := range table[1:] {
		bound = bound.Extend(geo.ToMercator(r[1], r[2]))
	}
	grid, err := kriging.NewGrid(bound, opts.GridCellSizeM)
	require.NoError(t, err)
	interp, err := kriging.Interpolate(points, grid, opts.Fitter, opts.Kriging)
	require.NoError(t, err)
	heat := heatmap.FromField(grid, interp.Field, opts.Weighting)
	require.Len(t, heat, res.HeatPoints)

	cell := opts.GridCellSizeM + 1e-3
	for _, h := range heat {
		assert.GreaterOrEqual(t, h.Weight, 0.0)
		assert.LessOrEqual(t, h.Weight, 1.0)
		p := geo.ToMercator(h.Lat, h.Lon)
		assert.GreaterOrEqual(t, p.X(), bound.Min.X()-cell)
		assert.LessOrEqual(t, p.X(), bound.Max.X()+cell)
		assert.GreaterOrEqual(t, p.Y(), bound.Min.Y()-cell)
		assert.LessOrEqual(t, p.Y(), bound.Max.Y()+cell)
	}

	page := testutil.ReadFile(t, fsys, "map.html")
	assert.Contains(t, page, "leaflet-heat.js")
	assert.Equal(t, [2]float64{53.2681, -0.53}, res.Centre)
}

func TestRunDropsMalformedRows(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	csv := testutil.SurveyCSV(testutil.ThreeSampleRows[:2]...) +
		"-65,53.2683\n" +
		"n/a,53.2684,-0.5302,50,90\n" +
		testutil.SurveyCSV(testutil.ThreeSampleRows[2])
	testutil.WriteFile(t, fsys, "walk.csv", csv)

	res, err := Run(fsys, testOptions("walk.csv", "map.html"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Loaded)
	assert.Equal(t, 2, res.Dropped)
	assert.True(t, fsys.Exists("map.html"))
}

func TestRunDropsPolarSamples(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	csv := testutil.SurveyCSV(testutil.ThreeSampleRows...) +
		testutil.SurveyCSV(testutil.Row{-65, 88, 10, 50, 90}, testutil.Row{-66, -89, 10, 50, 90})
	testutil.WriteFile(t, fsys, "walk.csv", csv)

	res, err := Run(fsys, testOptions("walk.csv", "map.html"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Loaded)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, [2]float64{53.2681, -0.53}, res.Centre)
}

func TestRunSinglePointFallsBack(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteFile(t, fsys, "one.csv", testutil.SurveyCSV(testutil.ThreeSampleRows[0]))

	first, err := Run(fsys, testOptions("one.csv", "a.html"))
	require.NoError(t, err)
	second, err := Run(fsys, testOptions("one.csv", "b.html"))
	require.NoError(t, err)

	assert.True(t, first.Fallback)
	assert.Equal(t, kriging.StrategyDefault, first.Strategy)
	assert.Equal(t, first.Model, second.Model)
	assert.Equal(t, first.HeatPoints, second.HeatPoints)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunWritesNothingOnFailure(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteFile(t, fsys, "walk.csv", testutil.SurveyCSV(testutil.ThreeSampleRows...))

	t.Run("missing input", func(t *testing.T) {
		_, err := Run(fsys, testOptions("missing.csv", "map.html"))
		require.Error(t, err)
		assert.False(t, fsys.Exists("map.html"))
	})

	t.Run("grid too large", func(t *testing.T) {
		opts := testOptions("walk.csv", "map.html")
		opts.GridCellSizeM = 0.0001
		_, err := Run(fsys, opts)
		require.ErrorIs(t, err, kriging.ErrGridTooLarge)
		assert.False(t, fsys.Exists("map.html"))
	})

	t.Run("invalid cell", func(t *testing.T) {
		opts := testOptions("walk.csv", "map.html")
		opts.GridCellSizeM = 0
		_, err := Run(fsys, opts)
		require.ErrorIs(t, err, kriging.ErrInvalidCell)
		assert.False(t, fsys.Exists("map.html"))
	})
}

func TestRunExtraArtefacts(t *testing.T) {
	quiet(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteFile(t, fsys, "walk.csv", testutil.SurveyCSV(testutil.GridRows(5, 53.268, -0.53, 0.0002)...))

	opts := testOptions("walk.csv", "out/map.html")
	opts.Satellite = true
	opts.Center = &[2]float64{53.2, -0.5}
	opts.Kriging = kriging.Options{Neighbours: 8, Variance: true}
	opts.FieldChartPath = "out/field.html"
	opts.PointMapPath = "out/points.html"
	opts.MetricsPath = "out/survey.prom"

	res, err := Run(fsys, opts)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{53.2, -0.5}, res.Centre)
	assert.Equal(t, []string{"out/map.html", "out/field.html", "out/points.html", "out/survey.prom"}, res.Outputs)

	assert.Contains(t, testutil.ReadFile(t, fsys, "out/map.html"), "World_Imagery")
	assert.Contains(t, testutil.ReadFile(t, fsys, "out/field.html"), "echarts")
	assert.Contains(t, testutil.ReadFile(t, fsys, "out/points.html"), "circleMarker")

	prom := testutil.ReadFile(t, fsys, "out/survey.prom")
	assert.Contains(t, prom, "rssi_survey_rows_loaded 25")
	assert.Contains(t, prom, `rssi_survey_stage_seconds{stage="krige"}`)
}

func TestOptionsFromConfig(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteFile(t, fsys, "survey.yaml", strings.Join([]string{
		"input_path: walk.csv",
		"grid_cell_size_m: 12.5",
		"map_center: [53.1, -0.4]",
		"weighting: shift",
		"variogram_model: gaussian",
		"kriging_neighbours: 16",
		"compute_variance: true",
		"metrics_path: run.prom",
	}, "\n"))
	cfg, err := config.LoadSurveyConfig(fsys, "survey.yaml")
	require.NoError(t, err)

	o := OptionsFromConfig(cfg)
	assert.Equal(t, "walk.csv", o.InputPath)
	assert.Equal(t, config.DefaultOutputPath, o.OutputPath)
	assert.Equal(t, 12.5, o.GridCellSizeM)
	require.NotNil(t, o.Center)
	assert.Equal(t, [2]float64{53.1, -0.4}, *o.Center)
	assert.Equal(t, heatmap.PolicyShift, o.Weighting)
	assert.Equal(t, kriging.VariogramFitter{Family: kriging.Gaussian, Bins: kriging.DefaultBins, MaxSamples: kriging.DefaultMaxSamples}, o.Fitter)
	assert.Equal(t, kriging.Options{Neighbours: 16, Variance: true}, o.Kriging)
	assert.Equal(t, "run.prom", o.MetricsPath)
	assert.Empty(t, o.FieldChartPath)
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, "./csv/RIH-all.csv", o.InputPath)
	assert.Equal(t, "gps_heatmap_kriged.html", o.OutputPath)
	assert.Equal(t, 30.0, o.GridCellSizeM)
	assert.Equal(t, 20, o.HeatRadius)
	assert.Equal(t, heatmap.PolicyClip, o.Weighting)
	assert.Nil(t, o.Center)
	assert.False(t, o.Satellite)
}
