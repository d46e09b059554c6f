package kriging

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/monitoring"
)

// Fitter derives a variogram model from samples.
type Fitter interface {
	Fit(points []Point) (Model, error)
}

// VariogramFitter fits a model to the empirical variogram by pair-weighted
// least squares. A zero Family means Auto; zero Bins and MaxSamples take
// the package defaults.
type VariogramFitter struct {
	Family     Family
	Bins       int
	MaxSamples int
}

// maxRangeFactor bounds a fitted range relative to the variogram's maximum
// lag; anything beyond is treated as a divergent fit.
const maxRangeFactor = 100

// Fit implements Fitter.
func (f VariogramFitter) Fit(points []Point) (Model, error) {
	v, err := EstimateVariogram(points, f.Bins, f.MaxSamples)
	if err != nil {
		return Model{}, err
	}

	family := f.Family
	if family == "" {
		family = Auto
	}
	if family != Auto {
		m, _, err := fitFamily(v, family)
		return m, err
	}

	var (
		best    Model
		bestSSE = math.Inf(1)
		errs    []error
	)
	for _, fam := range autoOrder {
		m, sse, err := fitFamily(v, fam)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sse < bestSSE {
			best, bestSSE = m, sse
		}
	}
	if math.IsInf(bestSSE, 1) {
		return Model{}, errors.Join(errs...)
	}
	return best, nil
}

// fitFamily minimises the pair-weighted squared error between the model and
// the empirical bins. Parameters are searched as (ln sill, ln range,
// sqrt nugget) so the optimiser is unconstrained.
func fitFamily(v *Variogram, family Family) (Model, float64, error) {
	if len(v.Bins) < 3 {
		return Model{}, 0, fmt.Errorf("%s: %w (%d)", family, ErrTooFewBins, len(v.Bins))
	}

	maxGamma := 0.0
	for _, b := range v.Bins {
		maxGamma = math.Max(maxGamma, b.Gamma)
	}
	if !(maxGamma > 0) {
		return Model{}, 0, fmt.Errorf("%s: empirical variogram is flat at zero", family)
	}

	toModel := func(x []float64) Model {
		return Model{Family: family, Sill: math.Exp(x[0]), Range: math.Exp(x[1]), Nugget: x[2] * x[2]}
	}
	sse := func(x []float64) float64 {
		m := toModel(x)
		total := 0.0
		for _, b := range v.Bins {
			d := m.Gamma(b.Lag) - b.Gamma
			total += float64(b.Pairs) * d * d
		}
		if math.IsNaN(total) {
			return math.Inf(1)
		}
		return total
	}

	x0 := []float64{math.Log(maxGamma), math.Log(v.MaxDistance / 3), math.Sqrt(0.05 * maxGamma)}
	res, err := optimize.Minimize(
		optimize.Problem{Func: sse},
		x0,
		&optimize.Settings{MajorIterations: 2000, FuncEvaluations: 10000},
		&optimize.NelderMead{},
	)
	if res == nil {
		return Model{}, 0, fmt.Errorf("%s: failed to fit variogram: %w", family, err)
	}

	m := toModel(res.X)
	if err := m.Validate(); err != nil {
		return Model{}, 0, fmt.Errorf("%s: fit produced unusable model: %w", family, err)
	}
	if m.Range > maxRangeFactor*v.MaxDistance {
		return Model{}, 0, fmt.Errorf("%s: fitted range %.4g m diverged beyond %.4g m", family, m.Range, maxRangeFactor*v.MaxDistance)
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		return Model{}, 0, fmt.Errorf("%s: fit residual is not finite", family)
	}
	return m, res.F, nil
}

// FitOrDefault fits a model with f, substituting DefaultModel on any error.
// The second result reports whether the fallback was taken. It never fails.
func FitOrDefault(f Fitter, points []Point) (Model, bool) {
	m, err := f.Fit(points)
	if err == nil {
		if err = m.Validate(); err == nil {
			return m, false
		}
	}
	def := DefaultModel(points)
	monitoring.Logf("variogram fit failed (%v); using default model %s", err, def)
	return def, true
}
