package telemetry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/fsutil"
)

// MinColumns is the number of leading columns (rssi, lat, lon) a capture
// must provide.
const MinColumns = 3

// Column positions.
const (
	ColRSSI = iota
	ColLat
	ColLon
	ColAlt
	ColHeading
	numColumns
)

// FormatError reports a capture that cannot be interpreted as telemetry at
// all. It is fatal; individual bad rows are not FormatErrors.
type FormatError struct {
	Path    string
	Columns int
	Reason  string
}

func (e *FormatError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	return fmt.Sprintf("telemetry format error in %s: %s", where, e.Reason)
}

// LoadSamples reads and parses a capture file.
func LoadSamples(fsys fsutil.FileSystem, path string) (*Table, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry file: %w", err)
	}
	t, err := ParseSamples(data)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return t, nil
}

// ParseSamples parses headerless capture data. Rows whose rssi, lat or lon
// is missing or not a finite number are dropped and counted in Dropped.
func ParseSamples(data []byte) (*Table, error) {
	r := csv.NewReader(strings.NewReader(decodeText(data)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	if width < MinColumns {
		return nil, &FormatError{
			Columns: width,
			Reason:  fmt.Sprintf("need at least %d columns (rssi, lat, lon), found %d", MinColumns, width),
		}
	}

	t := &Table{Columns: width, Samples: make([]Sample, 0, len(records))}
	for _, rec := range records {
		s := Sample{
			RSSI:    field(rec, ColRSSI),
			Lat:     field(rec, ColLat),
			Lon:     field(rec, ColLon),
			Alt:     field(rec, ColAlt),
			Heading: field(rec, ColHeading),
		}
		if !finite(s.RSSI) || !finite(s.Lat) || !finite(s.Lon) {
			t.Dropped++
			continue
		}
		t.Samples = append(t.Samples, s)
	}
	return t, nil
}

// field returns the numeric value at column i, or NaN when absent or
// unparseable.
func field(rec []string, i int) float64 {
	if i >= len(rec) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// decodeText returns data as UTF-8. Captures exported by older Windows
// tooling are Latin-1; those are transcoded rather than rejected.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
