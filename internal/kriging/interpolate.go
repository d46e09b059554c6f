package kriging

import (
	"fmt"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/monitoring"
)

// Strategy names the model an interpolation was produced with.
type Strategy string

const (
	StrategyFitted      Strategy = "fitted"
	StrategyDefault     Strategy = "default"
	StrategyRegularised Strategy = "regularised"
)

// Result is a successful interpolation.
type Result struct {
	Field    *Field
	Model    Model
	Strategy Strategy
	// Fallback is true when the field was not produced by the fitted model.
	Fallback bool
}

type attempt struct {
	strategy Strategy
	model    Model
}

// Interpolate fits a model with fitter and kriges points onto grid. When the
// fit or the solve fails it falls back, in order, to DefaultModel and to
// DefaultModel with a small nugget. Only if every attempt fails is an
// *InterpolationError returned.
func Interpolate(points []Point, grid *Grid, fitter Fitter, opts Options) (*Result, error) {
	if len(points) == 0 {
		return nil, &InterpolationError{Errs: []error{ErrNoPoints}}
	}

	def := DefaultModel(points)
	var attempts []attempt
	if fitted, fellBack := FitOrDefault(fitter, points); !fellBack {
		attempts = append(attempts, attempt{StrategyFitted, fitted})
	}
	attempts = append(attempts,
		attempt{StrategyDefault, def},
		attempt{StrategyRegularised, def.Regularised()},
	)

	if opts.Neighbours == 0 && len(points) > MaxGlobalPoints {
		monitoring.Logf("kriging %d samples locally with %d neighbours per cell (global limit %d)",
			len(points), AutoNeighbours, MaxGlobalPoints)
	}

	rows, cols := grid.Shape()
	var errs []error
	for _, a := range attempts {
		field, err := evaluate(points, grid, a.model, opts)
		if err == nil {
			field, err = field.Conform(rows, cols)
		}
		if err != nil {
			monitoring.Logf("kriging with %s model %s failed: %v", a.strategy, a.model, err)
			errs = append(errs, fmt.Errorf("%s model %s: %w", a.strategy, a.model, err))
			continue
		}
		return &Result{
			Field:    field,
			Model:    a.model,
			Strategy: a.strategy,
			Fallback: a.strategy != StrategyFitted,
		}, nil
	}
	return nil, &InterpolationError{Errs: errs}
}

func evaluate(points []Point, grid *Grid, model Model, opts Options) (*Field, error) {
	ev, err := NewOrdinary(points, model, opts)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(grid)
}
