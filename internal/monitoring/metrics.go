package monitoring

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
)

// RunMetrics collects counters for a single survey run. Each run owns a
// private registry so repeated runs in one process (tests, the run
// subcommand) never collide on the default registerer.
type RunMetrics struct {
	registry *prometheus.Registry

	RowsLoaded    prometheus.Gauge
	RowsDropped   prometheus.Gauge
	GridCells     prometheus.Gauge
	HeatPoints    prometheus.Gauge
	ModelFallback prometheus.Gauge
	StageSeconds  *prometheus.GaugeVec
}

// NewRunMetrics registers the survey gauges on a fresh registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssi_survey_rows_loaded",
			Help: "Samples accepted by the loader",
		}),
		RowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssi_survey_rows_dropped",
			Help: "Rows discarded for missing or non-numeric rssi/lat/lon",
		}),
		GridCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssi_survey_grid_cells",
			Help: "Cells in the interpolation grid",
		}),
		HeatPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssi_survey_heat_points",
			Help: "Weighted points written to the heat layer",
		}),
		ModelFallback: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssi_survey_model_fallback",
			Help: "1 when the default covariance model replaced the fitted one",
		}),
		StageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rssi_survey_stage_seconds",
			Help: "Wall time spent in each pipeline stage",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.RowsLoaded, m.RowsDropped, m.GridCells, m.HeatPoints, m.ModelFallback, m.StageSeconds)
	return m
}

// ObserveStage records how long a stage took since start.
func (m *RunMetrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// Gatherer exposes the private registry.
func (m *RunMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteText encodes the gathered metrics in the text exposition format.
func (m *RunMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile writes the metrics to path on fsys in the node-exporter
// textfile format. The file is replaced atomically.
func (m *RunMetrics) WriteTextfile(fsys fsutil.FileSystem, path string) error {
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(fsys, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
