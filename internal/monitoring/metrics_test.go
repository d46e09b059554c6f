package monitoring

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
)

func TestRunMetrics_Independent(t *testing.T) {
	a := NewRunMetrics()
	b := NewRunMetrics()

	a.RowsLoaded.Set(12)
	b.RowsLoaded.Set(3)

	assert.Equal(t, 12.0, promtest.ToFloat64(a.RowsLoaded))
	assert.Equal(t, 3.0, promtest.ToFloat64(b.RowsLoaded))
}

func TestRunMetrics_ObserveStage(t *testing.T) {
	m := NewRunMetrics()
	m.ObserveStage("load", time.Now().Add(-time.Second))

	got := promtest.ToFloat64(m.StageSeconds.WithLabelValues("load"))
	assert.GreaterOrEqual(t, got, 1.0)

	var nilMetrics *RunMetrics
	nilMetrics.ObserveStage("load", time.Now())
}

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := NewRunMetrics()
	m.RowsDropped.Set(2)
	m.ModelFallback.Set(1)

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, m.WriteTextfile(fsys, "metrics/survey.prom"))

	data, err := fsys.ReadFile("metrics/survey.prom")
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "rssi_survey_rows_dropped 2"), text)
	assert.True(t, strings.Contains(text, "rssi_survey_model_fallback 1"), text)
	assert.False(t, fsys.Exists("metrics/.survey.prom.tmp"), "temp file should be renamed away")
}

func TestRunMetrics_WriteTextfileOS(t *testing.T) {
	m := NewRunMetrics()
	m.HeatPoints.Set(42)

	path := filepath.Join(t.TempDir(), "survey.prom")
	require.NoError(t, m.WriteTextfile(fsutil.OSFileSystem{}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE rssi_survey_heat_points gauge")
	assert.Contains(t, string(data), "rssi_survey_heat_points 42")
}
