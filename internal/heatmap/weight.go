// Package heatmap turns survey samples and kriged fields into weighted map
// points and renders them as self-contained Leaflet documents and ECharts
// field charts.
package heatmap

import (
	"fmt"
	"math"
	"strings"
)

// Policy maps an RSSI value in dBm to a heat weight.
type Policy string

const (
	// PolicyClip clips RSSI to [ClipMin, ClipMax] and rescales it to [0, 1].
	// It is bounded and monotonic for any input and is the default.
	PolicyClip Policy = "clip"
	// PolicyShift adds ShiftOffset, assuming RSSI roughly in [-100, 0]. The
	// binned and raw maps use it.
	PolicyShift Policy = "shift"
)

const (
	ClipMin     = -140.0
	ClipMax     = -10.0
	ShiftOffset = 100.0
)

// ParsePolicy parses a weighting policy name. Empty selects PolicyClip.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyClip, nil
	case PolicyClip, PolicyShift:
		return p, nil
	default:
		return "", fmt.Errorf("unknown weighting policy %q (want clip or shift)", s)
	}
}

// Weight returns the heat weight for an RSSI value. NaN maps to zero.
func (p Policy) Weight(rssi float64) float64 {
	if math.IsNaN(rssi) {
		return 0
	}
	if p == PolicyShift {
		return rssi + ShiftOffset
	}
	v := math.Min(math.Max(rssi, ClipMin), ClipMax)
	return (v - ClipMin) / (ClipMax - ClipMin)
}
