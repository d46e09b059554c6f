package telemetry

import "math"

// Sample is one telemetry reading. Alt and Heading are NaN when the capture
// did not include those columns.
type Sample struct {
	RSSI    float64
	Lat     float64
	Lon     float64
	Alt     float64
	Heading float64
}

// Table is the ordered set of samples accepted from one file.
type Table struct {
	Samples []Sample
	// Columns is the width of the widest row in the source file.
	Columns int
	// Dropped counts rows discarded by the loader and later filters.
	Dropped int
}

// Len returns the number of accepted samples.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

// RSSI returns the signal column.
func (t *Table) RSSI() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.RSSI
	}
	return out
}

// Lats returns the latitude column.
func (t *Table) Lats() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Lat
	}
	return out
}

// Lons returns the longitude column.
func (t *Table) Lons() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Lon
	}
	return out
}

// DropOutOfRange removes samples whose coordinates are outside the WGS84
// domain and returns how many were removed. Dropped is updated.
func (t *Table) DropOutOfRange() int {
	return t.DropWhere(func(s Sample) bool {
		return math.Abs(s.Lat) > 90 || math.Abs(s.Lon) > 180
	})
}

// DropWhere removes the samples for which drop returns true and returns how
// many were removed. Dropped is updated.
func (t *Table) DropWhere(drop func(Sample) bool) int {
	kept := t.Samples[:0]
	removed := 0
	for _, s := range t.Samples {
		if drop(s) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	t.Samples = kept
	t.Dropped += removed
	return removed
}
