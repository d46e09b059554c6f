package main

import (
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/config"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/heatmap"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/profile"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/survey"
)

func handleHeatmap(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	opts := survey.DefaultOptions()

	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	fs.StringVar(&opts.InputPath, "csv", opts.InputPath, "Input CSV (rssi, lat, lon[, alt, heading])")
	fs.StringVar(&opts.OutputPath, "out", opts.OutputPath, "Output HTML map")
	fs.Float64Var(&opts.GridCellSizeM, "grid", opts.GridCellSizeM, "Grid cell size in metres")
	fs.IntVar(&opts.HeatRadius, "radius", opts.HeatRadius, "Heat layer point radius in pixels")
	fs.BoolVar(&opts.Satellite, "satellite", false, "Add a togglable satellite base layer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.HeatRadius <= 0 {
		return fmt.Errorf("--radius must be positive, got %d", opts.HeatRadius)
	}
	return runSurvey(fsys, stdout, opts)
}

func handleRun(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Survey config file (.json, .yaml or .yml, required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadSurveyConfig(fsys, *configPath)
	if err != nil {
		return err
	}
	return runSurvey(fsys, stdout, survey.OptionsFromConfig(cfg))
}

func runSurvey(fsys fsutil.FileSystem, stdout io.Writer, opts survey.Options) error {
	res, err := survey.Run(fsys, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run %s: %d samples (%d dropped), %dx%d grid, %s model %s\n",
		res.RunID, res.Loaded, res.Dropped, res.Rows, res.Cols, res.Strategy, res.Model)
	if res.Fallback {
		fmt.Fprintln(stdout, "Note: fitted variogram unavailable, default model used")
	}
	for _, path := range res.Outputs {
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}
	return nil
}

func handleFixCSV(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("fixcsv", flag.ContinueOnError)
	in := fs.String("in", "", "Raw capture CSV (lat/lon x1e7, alt in mm, required)")
	out := fs.String("out", "", "Corrected CSV (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("--in and --out are required")
	}

	rows, err := survey.FixFile(fsys, *in, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Corrected %d rows into %s\n", rows, *out)
	return nil
}

func handlePointMap(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	opts := survey.PointMapOptions{}

	fs := flag.NewFlagSet("pointmap", flag.ContinueOnError)
	fs.StringVar(&opts.InputPath, "csv", config.DefaultInputPath, "Input CSV")
	fs.StringVar(&opts.OutputPath, "out", "gps_rssi_map.html", "Output HTML map")
	fs.BoolVar(&opts.ECEF, "ecef", false, "Read columns 2-4 as WGS84 ECEF x, y, z in metres")
	fs.BoolVar(&opts.Satellite, "satellite", false, "Add a togglable satellite base layer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := survey.PointMap(fsys, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d markers to %s\n", n, opts.OutputPath)
	return nil
}

func handleBinned(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	opts := survey.DefaultBinnedOptions()
	weighting := string(opts.Weighting)

	fs := flag.NewFlagSet("binned", flag.ContinueOnError)
	fs.StringVar(&opts.InputPath, "csv", config.DefaultInputPath, "Input CSV")
	fs.StringVar(&opts.OutputPath, "out", "gps_heatmap_binned.html", "Output HTML map")
	fs.Float64Var(&opts.CellSizeM, "cell", opts.CellSizeM, "Bin size in metres (0 plots raw samples)")
	fs.IntVar(&opts.MinCount, "min-count", opts.MinCount, "Minimum samples per bin")
	fs.IntVar(&opts.Radius, "radius", opts.Radius, "Heat layer point radius in pixels")
	fs.IntVar(&opts.Blur, "blur", opts.Blur, "Heat layer blur in pixels")
	fs.StringVar(&weighting, "weighting", weighting, "Weighting policy: clip or shift")
	fs.BoolVar(&opts.Satellite, "satellite", false, "Add a togglable satellite base layer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	policy, err := heatmap.ParsePolicy(weighting)
	if err != nil {
		return err
	}
	opts.Weighting = policy

	n, err := survey.Binned(fsys, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d heat points to %s\n", n, opts.OutputPath)
	return nil
}

func handleProfile(fsys fsutil.FileSystem, stdout io.Writer, args []string) error {
	plot := profile.DefaultOptions()
	mode := string(plot.Mode)
	smoothing := string(plot.Smoothing)
	opts := survey.ProfileOptions{Base: profile.Base{Lat: math.NaN(), Lon: math.NaN()}}

	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.StringVar(&opts.InputPath, "csv", config.DefaultInputPath, "Input CSV")
	fs.StringVar(&opts.OutputPath, "out", "rssi_profile.png", "Output PNG")
	fs.Float64Var(&opts.Base.Lat, "base-lat", math.NaN(), "Base station latitude (required)")
	fs.Float64Var(&opts.Base.Lon, "base-lon", math.NaN(), "Base station longitude (required)")
	fs.StringVar(&mode, "mode", mode, "Plot mode: distance, slice or stacked")
	fs.Float64Var(&plot.Heading, "heading", plot.Heading, "Slice bearing in degrees (slice mode)")
	fs.Float64Var(&plot.Tolerance, "tolerance", plot.Tolerance, "Slice half-width in degrees (slice mode)")
	fs.Float64Var(&plot.Step, "step", plot.Step, "Slice spacing in degrees (stacked mode)")
	fs.StringVar(&smoothing, "smooth", smoothing, "Smoothing: savgol, moving or none (stacked mode)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if math.IsNaN(opts.Base.Lat) || math.IsNaN(opts.Base.Lon) {
		return fmt.Errorf("--base-lat and --base-lon are required")
	}

	var err error
	if plot.Mode, err = profile.ParseMode(mode); err != nil {
		return err
	}
	if plot.Smoothing, err = profile.ParseMethod(smoothing); err != nil {
		return err
	}
	opts.Plot = plot

	n, err := survey.Profile(fsys, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Plotted %d %s entries to %s\n", n, plot.Mode, opts.OutputPath)
	return nil
}
