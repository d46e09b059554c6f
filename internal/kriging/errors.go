package kriging

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPoints is returned when an operation needs at least one sample.
	ErrNoPoints = errors.New("no sample points")
	// ErrNoPairs is returned when no two samples lie within the variogram's
	// maximum lag distance, for example with a single-point dataset.
	ErrNoPairs = errors.New("no sample pairs within variogram range")
	// ErrTooFewBins means fewer populated lag bins than model parameters.
	ErrTooFewBins = errors.New("too few populated variogram bins to fit a model")
	// ErrInvalidCell is returned for a non-positive or non-finite grid cell.
	ErrInvalidCell = errors.New("grid cell size must be positive and finite")
	// ErrGridTooLarge guards against grids that would not fit in memory.
	ErrGridTooLarge = errors.New("grid exceeds maximum cell count")
	// ErrSingular means the kriging system could not be solved.
	ErrSingular = errors.New("kriging system is singular or ill-conditioned")
)

// ShapeError reports a field whose dimensions cannot be reconciled with the
// grid it was evaluated on.
type ShapeError struct {
	WantRows, WantCols int
	Rows, Cols         int
	Len                int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("field shape %dx%d (%d values) does not match grid %dx%d",
		e.Rows, e.Cols, e.Len, e.WantRows, e.WantCols)
}

// InterpolationError is returned by Interpolate once every strategy has
// failed. It wraps the error from each attempt in order.
type InterpolationError struct {
	Errs []error
}

func (e *InterpolationError) Error() string {
	parts := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("interpolation failed after %d attempts: %s", len(e.Errs), strings.Join(parts, "; "))
}

func (e *InterpolationError) Unwrap() []error { return e.Errs }
