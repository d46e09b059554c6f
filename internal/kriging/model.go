package kriging

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Family names a variogram model shape.
type Family string

const (
	Exponential Family = "exponential"
	Spherical   Family = "spherical"
	Gaussian    Family = "gaussian"
	// Auto fits every family and keeps the best.
	Auto Family = "auto"
)

// autoOrder is the order families are tried in for Auto. On equal error
// the earlier family wins.
var autoOrder = []Family{Spherical, Exponential, Gaussian}

// ParseFamily parses a family name, case-insensitively.
func ParseFamily(s string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(s))); f {
	case Exponential, Spherical, Gaussian, Auto:
		return f, nil
	case "":
		return Auto, nil
	default:
		return "", fmt.Errorf("unknown variogram model %q (want auto, exponential, spherical or gaussian)", s)
	}
}

const (
	// minSill keeps the default model valid for constant data.
	minSill = 1e-6
	// minRange is the smallest default range in metres.
	minRange = 1.0
	// regularisedNugget is the nugget, as a fraction of the sill, used by
	// the last fallback strategy.
	regularisedNugget = 0.01
)

// Model is a fitted or default variogram. Sill is the partial sill, so the
// semivariance approaches Nugget+Sill at large lags.
type Model struct {
	Family Family  `json:"family"`
	Sill   float64 `json:"sill"`
	Range  float64 `json:"range"`
	Nugget float64 `json:"nugget"`
}

// Gamma returns the semivariance at lag h. Gamma(0) is zero.
func (m Model) Gamma(h float64) float64 {
	if h <= 0 {
		return 0
	}
	r := h / m.Range
	var g float64
	switch m.Family {
	case Spherical:
		if r >= 1 {
			g = 1
		} else {
			g = 1.5*r - 0.5*r*r*r
		}
	case Gaussian:
		g = 1 - math.Exp(-r*r)
	default:
		g = 1 - math.Exp(-r)
	}
	return m.Nugget + m.Sill*g
}

// Validate checks that the model describes a usable variogram.
func (m Model) Validate() error {
	switch m.Family {
	case Exponential, Spherical, Gaussian:
	default:
		return fmt.Errorf("invalid variogram family %q", m.Family)
	}
	if !(m.Sill > 0) || math.IsInf(m.Sill, 0) {
		return fmt.Errorf("invalid sill %v", m.Sill)
	}
	if !(m.Range > 0) || math.IsInf(m.Range, 0) {
		return fmt.Errorf("invalid range %v", m.Range)
	}
	if !(m.Nugget >= 0) || math.IsInf(m.Nugget, 0) {
		return fmt.Errorf("invalid nugget %v", m.Nugget)
	}
	return nil
}

func (m Model) String() string {
	return fmt.Sprintf("%s(sill=%.4g, range=%.4g m, nugget=%.4g)", m.Family, m.Sill, m.Range, m.Nugget)
}

// Regularised returns a copy of m with a small nugget added.
func (m Model) Regularised() Model {
	m.Nugget += regularisedNugget * m.Sill
	return m
}

// DefaultModel derives a model from the data alone: exponential, sill equal
// to the population variance of the values and range one fifth of the
// bounding box diagonal. The result depends only on the input.
func DefaultModel(points []Point) Model {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	sill := minSill
	if len(values) > 0 {
		if v := stat.PopVariance(values, nil); v > sill {
			sill = v
		}
	}
	return Model{
		Family: Exponential,
		Sill:   sill,
		Range:  math.Max(diagonal(points)/5, minRange),
		Nugget: 0,
	}
}

// diagonal returns the length of the bounding box diagonal of points.
func diagonal(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return math.Hypot(floats.Max(xs)-floats.Min(xs), floats.Max(ys)-floats.Min(ys))
}
