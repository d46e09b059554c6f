package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/units"
)

// RowError identifies a raw capture row that could not be corrected.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// CorrectRow converts one raw receiver row (rssi, lat*1e7, lon*1e7, alt mm,
// heading) into engineering units. It is a pure function of its input.
func CorrectRow(rec []string) ([]string, error) {
	if len(rec) < numColumns {
		return nil, fmt.Errorf("expected %d columns, found %d", numColumns, len(rec))
	}
	vals := make([]float64, numColumns)
	for i := 0; i < numColumns; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return []string{
		formatReal(vals[ColRSSI]),
		strconv.FormatFloat(units.DegreesFromE7(vals[ColLat]), 'f', units.CoordinateDecimals, 64),
		strconv.FormatFloat(units.DegreesFromE7(vals[ColLon]), 'f', units.CoordinateDecimals, 64),
		strconv.FormatFloat(units.MetresFromMillimetres(vals[ColAlt]), 'f', units.AltitudeDecimals, 64),
		strconv.FormatFloat(vals[ColHeading], 'f', units.HeadingDecimals, 64),
	}, nil
}

// FixCSV corrects every row of a raw capture and returns the number of rows
// written. Blank lines are skipped; any other unreadable row aborts the
// conversion with a *RowError so no partially corrected file is produced.
func FixCSV(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cw := csv.NewWriter(w)
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("failed to read raw capture: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		out, err := CorrectRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return rows, &RowError{Line: line, Err: err}
		}
		if err := cw.Write(out); err != nil {
			return rows, err
		}
		rows++
	}
	cw.Flush()
	return rows, cw.Error()
}

// formatReal renders a value the way the logger's desktop tooling always
// has: shortest round-trip form, with a trailing ".0" on integral values.
func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
