package kriging

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// MaxGridCells bounds the number of cells NewGrid will allocate.
const MaxGridCells = 4_000_000

// axisEpsilon absorbs floating-point error when counting axis steps.
const axisEpsilon = 1e-6

// Grid is a regular planar grid. Cells are addressed row-major: row r runs
// along Y[r], column c along X[c].
type Grid struct {
	X, Y []float64
	Cell float64
}

// NewGrid builds a grid covering bound padded by one cell on every side.
// Both axes are strictly increasing with step cell.
func NewGrid(bound orb.Bound, cell float64) (*Grid, error) {
	if !(cell > 0) || math.IsInf(cell, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCell, cell)
	}
	nx := axisLen(bound.Min.X(), bound.Max.X(), cell)
	ny := axisLen(bound.Min.Y(), bound.Max.Y(), cell)
	if nx*ny > MaxGridCells || math.IsNaN(nx*ny) {
		return nil, fmt.Errorf("%w: %.0f x %.0f cells at %v m (limit %d)", ErrGridTooLarge, ny, nx, cell, MaxGridCells)
	}
	return &Grid{
		X:    axis(bound.Min.X()-cell, int(nx), cell),
		Y:    axis(bound.Min.Y()-cell, int(ny), cell),
		Cell: cell,
	}, nil
}

// axisLen returns the number of steps from lo-cell to hi+cell inclusive.
func axisLen(lo, hi, cell float64) float64 {
	return math.Floor((hi-lo+2*cell+axisEpsilon)/cell) + 1
}

func axis(start float64, n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Shape returns the number of rows and columns.
func (g *Grid) Shape() (rows, cols int) {
	return len(g.Y), len(g.X)
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.X) * len(g.Y)
}

// At returns the planar coordinate of cell i in row-major order.
func (g *Grid) At(i int) (x, y float64) {
	return g.X[i%len(g.X)], g.Y[i/len(g.X)]
}

// Contains reports whether (x, y) lies within the grid extent.
func (g *Grid) Contains(x, y float64) bool {
	return len(g.X) > 0 && len(g.Y) > 0 &&
		x >= g.X[0] && x <= g.X[len(g.X)-1] &&
		y >= g.Y[0] && y <= g.Y[len(g.Y)-1]
}
