package survey

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/heatmap"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/monitoring"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/profile"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// FixFile corrects a raw receiver capture at in and writes the result to out.
func FixFile(fsys fsutil.FileSystem, in, out string) (int, error) {
	data, err := fsys.ReadFile(in)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", in, err)
	}
	var buf bytes.Buffer
	rows, err := telemetry.FixCSV(bytes.NewReader(data), &buf)
	if err != nil {
		return 0, fmt.Errorf("failed to correct %s: %w", in, err)
	}
	if err := fsutil.WriteFileAtomic(fsys, out, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	monitoring.Logf("corrected %d rows from %s into %s", rows, in, out)
	return rows, nil
}

// PointMapOptions configures a colour-coded point map.
type PointMapOptions struct {
	InputPath  string
	OutputPath string
	// ECEF reads columns 2 to 4 as WGS84 Earth-centred coordinates in metres.
	ECEF      bool
	Satellite bool
}

// PointMap draws every sample as a circle marker coloured by RSSI and
// returns the number of markers.
func PointMap(fsys fsutil.FileSystem, opts PointMapOptions) (int, error) {
	table, err := loadTable(fsys, opts.InputPath, opts.ECEF)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := renderPointMap(&buf, table.Samples, opts.Satellite); err != nil {
		return 0, err
	}
	if err := fsutil.WriteFileAtomic(fsys, opts.OutputPath, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	monitoring.Logf("wrote %d markers to %s", table.Len(), opts.OutputPath)
	return table.Len(), nil
}

// renderPointMap centres the markers on the mean sample position.
func renderPointMap(w io.Writer, samples []telemetry.Sample, satellite bool) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to plot")
	}
	t := telemetry.Table{Samples: samples}
	return heatmap.RenderMap(w, &heatmap.MapDocument{
		Title:     "RSSI point map",
		Center:    [2]float64{geo.Mean(t.Lats()), geo.Mean(t.Lons())},
		Zoom:      17,
		Satellite: satellite,
		Markers:   heatmap.SignalMarkers(samples),
	})
}

// BinnedOptions configures a heatmap of per-cell mean RSSI.
type BinnedOptions struct {
	InputPath  string
	OutputPath string
	// CellSizeM is the bin edge in metres. Zero plots the raw samples.
	CellSizeM float64
	MinCount  int
	Radius    int
	Blur      int
	Weighting heatmap.Policy
	Satellite bool
}

// DefaultBinnedOptions returns the settings of the binned survey map.
func DefaultBinnedOptions() BinnedOptions {
	return BinnedOptions{
		CellSizeM: 5,
		MinCount:  2,
		Radius:    25,
		Blur:      20,
		Weighting: heatmap.PolicyShift,
	}
}

// Binned renders a heatmap of binned (or raw) samples and returns the
// number of heat points.
func Binned(fsys fsutil.FileSystem, opts BinnedOptions) (int, error) {
	table, err := loadTable(fsys, opts.InputPath, false)
	if err != nil {
		return 0, err
	}
	if opts.CellSizeM < 0 {
		return 0, fmt.Errorf("invalid cell size %v", opts.CellSizeM)
	}

	var heat []heatmap.HeatPoint
	name := "RSSI heatmap"
	if opts.CellSizeM == 0 {
		heat = heatmap.FromSamples(table.Samples, opts.Weighting)
	} else {
		cells := heatmap.BinSamples(table.Samples, opts.CellSizeM, opts.MinCount)
		heat = heatmap.FromCells(cells, opts.Weighting)
		name = fmt.Sprintf("RSSI heatmap (%g m bins)", opts.CellSizeM)
		monitoring.Logf("binned %d samples into %d cells of %g m", table.Len(), len(cells), opts.CellSizeM)
	}
	if len(heat) == 0 {
		return 0, fmt.Errorf("no points with positive weight to plot")
	}

	var buf bytes.Buffer
	doc := &heatmap.MapDocument{
		Title:     name,
		Center:    medianCentre(table.Samples),
		Zoom:      17,
		Satellite: opts.Satellite,
		Heat: &heatmap.HeatLayer{
			Name:       name,
			Points:     heat,
			Radius:     opts.Radius,
			Blur:       opts.Blur,
			MinOpacity: 0.3,
			MaxZoom:    18,
		},
	}
	if err := heatmap.RenderMap(&buf, doc); err != nil {
		return 0, err
	}
	if err := fsutil.WriteFileAtomic(fsys, opts.OutputPath, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	return len(heat), nil
}

// ProfileOptions configures a radial signal profile plot.
type ProfileOptions struct {
	InputPath  string
	OutputPath string
	Base       profile.Base
	Plot       profile.Options
}

// Profile plots RSSI against distance from a base station and returns the
// number of observations or profiles drawn.
func Profile(fsys fsutil.FileSystem, opts ProfileOptions) (int, error) {
	table, err := loadTable(fsys, opts.InputPath, false)
	if err != nil {
		return 0, err
	}
	obs := profile.Observe(table.Samples, opts.Base)
	p, n, err := profile.Plot(obs, opts.Plot)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("no data to plot for %s mode", opts.Plot.Mode)
	}

	var buf bytes.Buffer
	if err := profile.WritePNG(&buf, p); err != nil {
		return 0, err
	}
	if err := fsutil.WriteFileAtomic(fsys, opts.OutputPath, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	monitoring.Logf("plotted %d %s entries to %s", n, opts.Plot.Mode, opts.OutputPath)
	return n, nil
}

func loadTable(fsys fsutil.FileSystem, path string, ecef bool) (*telemetry.Table, error) {
	table, err := telemetry.LoadSamples(fsys, path)
	if err != nil {
		return nil, err
	}
	if ecef {
		table = table.FromECEF()
	}
	table.DropOutOfRange()
	monitoring.Logf("loaded %d samples from %s (%d dropped)", table.Len(), path, table.Dropped)
	if table.Len() == 0 {
		return nil, fmt.Errorf("no usable samples in %s", path)
	}
	return table, nil
}
