package kriging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Evaluator predicts a field over a grid.
type Evaluator interface {
	Evaluate(grid *Grid) (*Field, error)
}

// MaxGlobalPoints is the largest sample count solved as one dense system
// when Options.Neighbours is zero. Larger surveys switch to local kriging
// over AutoNeighbours nearest samples.
const (
	MaxGlobalPoints = DefaultMaxSamples
	AutoNeighbours  = 64
)

// Options controls how the kriging system is solved.
type Options struct {
	// Neighbours limits each prediction to the k nearest samples. Any value
	// not below the number of samples uses every sample. Zero uses every
	// sample up to MaxGlobalPoints and AutoNeighbours beyond.
	Neighbours int
	// Variance also computes the kriging variance of every cell.
	Variance bool
}

// Ordinary is an ordinary kriging evaluator bound to one set of samples and
// one model.
type Ordinary struct {
	model    Model
	points   []Point
	variance bool

	// global mode
	lu   *mat.LU
	dual *mat.VecDense

	// local mode
	neighbours int
	tree       *kdtree.Tree
}

// NewOrdinary prepares an evaluator. Coincident samples are averaged first.
// In global mode the system is factorised once here, so a singular system
// is reported before any cell is evaluated.
func NewOrdinary(points []Point, model Model, opts Options) (*Ordinary, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	pts := mergeCoincident(points)
	if k := opts.neighbours(len(pts)); k < len(pts) {
		return newLocal(pts, model, k, opts.Variance), nil
	}

	o := &Ordinary{model: model, points: pts, variance: opts.Variance, lu: &mat.LU{}}
	o.lu.Factorize(systemMatrix(pts, model))

	n := len(pts)
	rhs := mat.NewVecDense(n+1, nil)
	for i, p := range pts {
		rhs.SetVec(i, p.Value)
	}
	o.dual = mat.NewVecDense(n+1, nil)
	if err := o.lu.SolveVecTo(o.dual, false, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return o, nil
}

// neighbours returns how many samples each prediction uses for n merged
// samples. A result of n means the global system.
func (o Options) neighbours(n int) int {
	switch {
	case o.Neighbours > 0 && o.Neighbours < n:
		return o.Neighbours
	case o.Neighbours == 0 && n > MaxGlobalPoints:
		return AutoNeighbours
	}
	return n
}

func newLocal(pts []Point, model Model, k int, variance bool) *Ordinary {
	idx := make(indexedPoints, len(pts))
	for i, p := range pts {
		idx[i] = indexedPoint{X: p.X, Y: p.Y, Index: i}
	}
	return &Ordinary{
		model:      model,
		points:     pts,
		variance:   variance,
		neighbours: k,
		tree:       kdtree.New(idx, false),
	}
}

// Evaluate implements Evaluator.
func (o *Ordinary) Evaluate(grid *Grid) (*Field, error) {
	rows, cols := grid.Shape()
	f := NewField(rows, cols, o.variance)

	predict := o.predictGlobal
	if o.tree != nil {
		predict = o.predictLocal
	}
	for i := 0; i < grid.Len(); i++ {
		x, y := grid.At(i)
		v, s2, err := predict(x, y)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cell %d: %w: non-finite prediction", i, ErrSingular)
		}
		f.Values[i] = v
		if f.Variance != nil {
			f.Variance[i] = math.Max(s2, 0)
		}
	}
	return f, nil
}

// predictGlobal uses the dual form: with a = K^-1 [z; 0], the estimate at
// x0 is sum(a_i * gamma(x_i, x0)) + a_n. Variance needs a full solve.
func (o *Ordinary) predictGlobal(x, y float64) (float64, float64, error) {
	n := len(o.points)
	b := mat.NewVecDense(n+1, nil)
	v := o.dual.AtVec(n)
	for i, p := range o.points {
		g := o.model.Gamma(math.Hypot(p.X-x, p.Y-y))
		b.SetVec(i, g)
		v += o.dual.AtVec(i) * g
	}
	if !o.variance {
		return v, 0, nil
	}
	b.SetVec(n, 1)
	var w mat.VecDense
	if err := o.lu.SolveVecTo(&w, false, b); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return v, mat.Dot(b, &w), nil
}

// predictLocal solves a small system over the nearest samples to (x, y).
func (o *Ordinary) predictLocal(x, y float64) (float64, float64, error) {
	keeper := kdtree.NewNKeeper(o.neighbours)
	o.tree.NearestSet(keeper, indexedPoint{X: x, Y: y, Index: -1})

	near := make([]Point, 0, o.neighbours)
	for _, cd := range keeper.Heap {
		// NKeeper seeds its heap with a nil sentinel.
		if cd.Comparable == nil {
			continue
		}
		near = append(near, o.points[cd.Comparable.(indexedPoint).Index])
	}
	if len(near) == 0 {
		return 0, 0, ErrNoPoints
	}

	m := len(near)
	b := mat.NewVecDense(m+1, nil)
	for i, p := range near {
		b.SetVec(i, o.model.Gamma(math.Hypot(p.X-x, p.Y-y)))
	}
	b.SetVec(m, 1)

	var lu mat.LU
	lu.Factorize(systemMatrix(near, o.model))
	var w mat.VecDense
	if err := lu.SolveVecTo(&w, false, b); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	v := 0.0
	for i, p := range near {
		v += w.AtVec(i) * p.Value
	}
	return v, mat.Dot(b, &w), nil
}

// systemMatrix builds the (n+1)x(n+1) ordinary kriging matrix of
// semivariances bordered by the unbiasedness constraint.
func systemMatrix(pts []Point, model Model) *mat.Dense {
	n := len(pts)
	k := mat.NewDense(n+1, n+1, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g := model.Gamma(math.Hypot(pts[i].X-pts[j].X, pts[i].Y-pts[j].Y))
			k.Set(i, j, g)
			k.Set(j, i, g)
		}
		k.Set(i, n, 1)
		k.Set(n, i, 1)
	}
	return k
}

// mergeCoincident averages the values of samples sharing a location,
// keeping locations in first-seen order.
func mergeCoincident(points []Point) []Point {
	type acc struct {
		sum float64
		n   int
		at  int
	}
	seen := make(map[[2]float64]*acc, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		key := [2]float64{p.X, p.Y}
		if a, ok := seen[key]; ok {
			a.sum += p.Value
			a.n++
			continue
		}
		seen[key] = &acc{sum: p.Value, n: 1, at: len(out)}
		out = append(out, p)
	}
	if len(out) == len(points) {
		return out
	}
	for _, a := range seen {
		out[a.at].Value = a.sum / float64(a.n)
	}
	return out
}

// indexedPoint is a kdtree.Comparable carrying its index into the sample
// slice.
type indexedPoint struct {
	X, Y  float64
	Index int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p indexedPoints) Pivot(d kdtree.Dim) int {
	plane := pointPlane{indexedPoints: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

// pointPlane orders points along one dimension for kdtree partitioning.
type pointPlane struct {
	indexedPoints
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].X < p.indexedPoints[j].X
	case 1:
		return p.indexedPoints[i].Y < p.indexedPoints[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{indexedPoints: p.indexedPoints[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}
