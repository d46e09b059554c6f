// Package testutil provides shared test utilities and telemetry fixtures.
//
// This package centralises the survey CSV fixtures used by the pipeline and
// command tests so every package exercises the same rows.
package testutil

import (
	"strconv"
	"strings"
	"testing"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
)

// Row is one telemetry line: rssi, lat, lon, alt, heading.
type Row [5]float64

// ThreeSampleRows is the small walk used by the end-to-end scenarios.
var ThreeSampleRows = []Row{
	{-60, 53.2680, -0.5300, 50, 90},
	{-70, 53.2681, -0.5301, 50, 95},
	{-55, 53.2682, -0.5299, 50, 100},
}

// SurveyCSV renders rows as a headerless CSV.
func SurveyCSV(rows ...Row) string {
	var b strings.Builder
	for _, r := range rows {
		for i, v := range r {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// GridRows returns an n by n walk of samples spaced step degrees apart
// starting at (lat, lon), with RSSI falling off linearly from the corner.
func GridRows(n int, lat, lon, step float64) []Row {
	rows := make([]Row, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rssi := -50 - 2*float64(i+j)
			rows = append(rows, Row{rssi, lat + float64(i)*step, lon + float64(j)*step, 40, float64(45 * ((i + j) % 8))})
		}
	}
	return rows
}

// WriteFile stores content at path on fsys, failing the test on error.
func WriteFile(t *testing.T, fsys fsutil.FileSystem, path, content string) {
	t.Helper()
	if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content at path on fsys, failing the test on error.
func ReadFile(t *testing.T, fsys fsutil.FileSystem, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
