// Package config holds the options of a configured survey run and loads
// them from JSON or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/heatmap"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/kriging"
)

// Defaults for every survey option.
const (
	DefaultInputPath           = "./csv/RIH-all.csv"
	DefaultOutputPath          = "gps_heatmap_kriged.html"
	DefaultGridCellSizeM       = 30.0
	DefaultHeatRadius          = 20
	DefaultHeatBlur            = 15
	DefaultHeatMinOpacity      = 0.25
	DefaultHeatMaxZoom         = 20
	DefaultMapZoom             = 15
	DefaultWeighting           = "clip"
	DefaultVariogramModel      = "auto"
	DefaultVariogramBins       = kriging.DefaultBins
	DefaultVariogramMaxSamples = kriging.DefaultMaxSamples
)

// maxFileSize bounds config files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// SurveyConfig configures one kriged heatmap run. Every field is optional;
// the Get* methods supply the default for anything left unset, so partial
// configs are safe.
type SurveyConfig struct {
	InputPath     *string  `json:"input_path,omitempty" yaml:"input_path,omitempty"`
	OutputPath    *string  `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	GridCellSizeM *float64 `json:"grid_cell_size_m,omitempty" yaml:"grid_cell_size_m,omitempty"`

	// Heat overlay
	HeatRadius     *int     `json:"heat_radius,omitempty" yaml:"heat_radius,omitempty"`
	HeatBlur       *int     `json:"heat_blur,omitempty" yaml:"heat_blur,omitempty"`
	HeatMinOpacity *float64 `json:"heat_min_opacity,omitempty" yaml:"heat_min_opacity,omitempty"`
	HeatMaxZoom    *int     `json:"heat_max_zoom,omitempty" yaml:"heat_max_zoom,omitempty"`
	Weighting      *string  `json:"weighting,omitempty" yaml:"weighting,omitempty"` // clip or shift

	// Map
	MapCenter []float64 `json:"map_center,omitempty" yaml:"map_center,omitempty"` // [lat, lon]; median of inputs when unset
	MapZoom   *int      `json:"map_zoom,omitempty" yaml:"map_zoom,omitempty"`
	Satellite *bool     `json:"satellite,omitempty" yaml:"satellite,omitempty"`

	// Kriging
	VariogramModel      *string `json:"variogram_model,omitempty" yaml:"variogram_model,omitempty"`
	VariogramBins       *int    `json:"variogram_bins,omitempty" yaml:"variogram_bins,omitempty"`
	VariogramMaxSamples *int    `json:"variogram_max_samples,omitempty" yaml:"variogram_max_samples,omitempty"`
	KrigingNeighbours   *int    `json:"kriging_neighbours,omitempty" yaml:"kriging_neighbours,omitempty"` // 0 uses every sample
	ComputeVariance     *bool   `json:"compute_variance,omitempty" yaml:"compute_variance,omitempty"`

	// Optional extra artefacts
	FieldChartPath *string `json:"field_chart_path,omitempty" yaml:"field_chart_path,omitempty"`
	PointMapPath   *string `json:"point_map_path,omitempty" yaml:"point_map_path,omitempty"`
	MetricsPath    *string `json:"metrics_path,omitempty" yaml:"metrics_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySurveyConfig returns a SurveyConfig with all fields unset.
func EmptySurveyConfig() *SurveyConfig {
	return &SurveyConfig{}
}

// DefaultSurveyConfig returns a SurveyConfig with every defaulted field set
// explicitly.
func DefaultSurveyConfig() *SurveyConfig {
	return &SurveyConfig{
		InputPath:           ptrString(DefaultInputPath),
		OutputPath:          ptrString(DefaultOutputPath),
		GridCellSizeM:       ptrFloat64(DefaultGridCellSizeM),
		HeatRadius:          ptrInt(DefaultHeatRadius),
		HeatBlur:            ptrInt(DefaultHeatBlur),
		HeatMinOpacity:      ptrFloat64(DefaultHeatMinOpacity),
		HeatMaxZoom:         ptrInt(DefaultHeatMaxZoom),
		Weighting:           ptrString(DefaultWeighting),
		MapZoom:             ptrInt(DefaultMapZoom),
		Satellite:           ptrBool(false),
		VariogramModel:      ptrString(DefaultVariogramModel),
		VariogramBins:       ptrInt(DefaultVariogramBins),
		VariogramMaxSamples: ptrInt(DefaultVariogramMaxSamples),
		KrigingNeighbours:   ptrInt(0),
		ComputeVariance:     ptrBool(false),
	}
}

// LoadSurveyConfig loads a SurveyConfig from a .json, .yaml or .yml file.
// Fields omitted from the file keep their defaults.
func LoadSurveyConfig(fsys fsutil.FileSystem, path string) (*SurveyConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySurveyConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *SurveyConfig) Validate() error {
	if c.InputPath != nil && *c.InputPath == "" {
		return fmt.Errorf("input_path must not be empty")
	}
	if c.OutputPath != nil && *c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if c.GridCellSizeM != nil {
		if v := *c.GridCellSizeM; !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("grid_cell_size_m must be positive and finite, got %v", v)
		}
	}
	if c.HeatRadius != nil && *c.HeatRadius <= 0 {
		return fmt.Errorf("heat_radius must be positive, got %d", *c.HeatRadius)
	}
	if c.HeatBlur != nil && *c.HeatBlur < 0 {
		return fmt.Errorf("heat_blur must be non-negative, got %d", *c.HeatBlur)
	}
	if c.HeatMinOpacity != nil {
		if v := *c.HeatMinOpacity; !(v >= 0 && v <= 1) {
			return fmt.Errorf("heat_min_opacity must be between 0 and 1, got %v", v)
		}
	}
	if c.HeatMaxZoom != nil && *c.HeatMaxZoom < 0 {
		return fmt.Errorf("heat_max_zoom must be non-negative, got %d", *c.HeatMaxZoom)
	}
	if c.MapCenter != nil {
		if len(c.MapCenter) != 2 {
			return fmt.Errorf("map_center must be [lat, lon], got %d values", len(c.MapCenter))
		}
		if lat, lon := c.MapCenter[0], c.MapCenter[1]; !(math.Abs(lat) <= 90) || !(math.Abs(lon) <= 180) {
			return fmt.Errorf("map_center %v is outside WGS84 range", c.MapCenter)
		}
	}
	if c.MapZoom != nil && (*c.MapZoom < 0 || *c.MapZoom > 22) {
		return fmt.Errorf("map_zoom must be between 0 and 22, got %d", *c.MapZoom)
	}
	if c.Weighting != nil {
		if _, err := heatmap.ParsePolicy(*c.Weighting); err != nil {
			return fmt.Errorf("weighting: %w", err)
		}
	}
	if c.VariogramModel != nil {
		if _, err := kriging.ParseFamily(*c.VariogramModel); err != nil {
			return fmt.Errorf("variogram_model: %w", err)
		}
	}
	if c.VariogramBins != nil && *c.VariogramBins < 3 {
		return fmt.Errorf("variogram_bins must be at least 3, got %d", *c.VariogramBins)
	}
	if c.VariogramMaxSamples != nil && *c.VariogramMaxSamples < 2 {
		return fmt.Errorf("variogram_max_samples must be at least 2, got %d", *c.VariogramMaxSamples)
	}
	if c.KrigingNeighbours != nil && *c.KrigingNeighbours < 0 {
		return fmt.Errorf("kriging_neighbours must be non-negative, got %d", *c.KrigingNeighbours)
	}
	return nil
}

// GetInputPath returns the input_path value or the default.
func (c *SurveyConfig) GetInputPath() string {
	if c.InputPath == nil {
		return DefaultInputPath
	}
	return *c.InputPath
}

// GetOutputPath returns the output_path value or the default.
func (c *SurveyConfig) GetOutputPath() string {
	if c.OutputPath == nil {
		return DefaultOutputPath
	}
	return *c.OutputPath
}

// GetGridCellSizeM returns the grid_cell_size_m value or the default.
func (c *SurveyConfig) GetGridCellSizeM() float64 {
	if c.GridCellSizeM == nil {
		return DefaultGridCellSizeM
	}
	return *c.GridCellSizeM
}

// GetHeatRadius returns the heat_radius value or the default.
func (c *SurveyConfig) GetHeatRadius() int {
	if c.HeatRadius == nil {
		return DefaultHeatRadius
	}
	return *c.HeatRadius
}

// GetHeatBlur returns the heat_blur value or the default.
func (c *SurveyConfig) GetHeatBlur() int {
	if c.HeatBlur == nil {
		return DefaultHeatBlur
	}
	return *c.HeatBlur
}

// GetHeatMinOpacity returns the heat_min_opacity value or the default.
func (c *SurveyConfig) GetHeatMinOpacity() float64 {
	if c.HeatMinOpacity == nil {
		return DefaultHeatMinOpacity
	}
	return *c.HeatMinOpacity
}

// GetHeatMaxZoom returns the heat_max_zoom value or the default.
func (c *SurveyConfig) GetHeatMaxZoom() int {
	if c.HeatMaxZoom == nil {
		return DefaultHeatMaxZoom
	}
	return *c.HeatMaxZoom
}

// GetMapCenter returns the configured [lat, lon] and true, or false when
// the centre should be derived from the data.
func (c *SurveyConfig) GetMapCenter() ([2]float64, bool) {
	if len(c.MapCenter) != 2 {
		return [2]float64{}, false
	}
	return [2]float64{c.MapCenter[0], c.MapCenter[1]}, true
}

// GetMapZoom returns the map_zoom value or the default.
func (c *SurveyConfig) GetMapZoom() int {
	if c.MapZoom == nil {
		return DefaultMapZoom
	}
	return *c.MapZoom
}

// GetSatellite returns the satellite value or the default.
func (c *SurveyConfig) GetSatellite() bool {
	if c.Satellite == nil {
		return false
	}
	return *c.Satellite
}

// GetWeighting returns the weighting policy or the default.
func (c *SurveyConfig) GetWeighting() heatmap.Policy {
	if c.Weighting == nil {
		return heatmap.PolicyClip
	}
	p, err := heatmap.ParsePolicy(*c.Weighting)
	if err != nil {
		return heatmap.PolicyClip // default on parse error
	}
	return p
}

// GetVariogramModel returns the variogram family or the default.
func (c *SurveyConfig) GetVariogramModel() kriging.Family {
	if c.VariogramModel == nil {
		return kriging.Auto
	}
	f, err := kriging.ParseFamily(*c.VariogramModel)
	if err != nil {
		return kriging.Auto // default on parse error
	}
	return f
}

// GetVariogramBins returns the variogram_bins value or the default.
func (c *SurveyConfig) GetVariogramBins() int {
	if c.VariogramBins == nil {
		return DefaultVariogramBins
	}
	return *c.VariogramBins
}

// GetVariogramMaxSamples returns the variogram_max_samples value or the default.
func (c *SurveyConfig) GetVariogramMaxSamples() int {
	if c.VariogramMaxSamples == nil {
		return DefaultVariogramMaxSamples
	}
	return *c.VariogramMaxSamples
}

// GetKrigingNeighbours returns the kriging_neighbours value or the default.
func (c *SurveyConfig) GetKrigingNeighbours() int {
	if c.KrigingNeighbours == nil {
		return 0
	}
	return *c.KrigingNeighbours
}

// GetComputeVariance returns the compute_variance value or the default.
func (c *SurveyConfig) GetComputeVariance() bool {
	if c.ComputeVariance == nil {
		return false
	}
	return *c.ComputeVariance
}

// GetFieldChartPath returns the field chart path, empty when disabled.
func (c *SurveyConfig) GetFieldChartPath() string {
	if c.FieldChartPath == nil {
		return ""
	}
	return *c.FieldChartPath
}

// GetPointMapPath returns the point map path, empty when disabled.
func (c *SurveyConfig) GetPointMapPath() string {
	if c.PointMapPath == nil {
		return ""
	}
	return *c.PointMapPath
}

// GetMetricsPath returns the metrics textfile path, empty when disabled.
func (c *SurveyConfig) GetMetricsPath() string {
	if c.MetricsPath == nil {
		return ""
	}
	return *c.MetricsPath
}
