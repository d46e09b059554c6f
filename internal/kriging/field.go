package kriging

// Field holds one predicted value per grid cell, row-major, and optionally
// the kriging variance of each prediction.
type Field struct {
	Rows, Cols int
	Values     []float64
	Variance   []float64
}

// NewField allocates a rows x cols field.
func NewField(rows, cols int, withVariance bool) *Field {
	f := &Field{Rows: rows, Cols: cols, Values: make([]float64, rows*cols)}
	if withVariance {
		f.Variance = make([]float64, rows*cols)
	}
	return f
}

// At returns the value at row r, column c.
func (f *Field) At(r, c int) float64 {
	return f.Values[r*f.Cols+c]
}

// Conform returns f arranged as rows x cols. A flat vector of the right
// length is reshaped and a field with swapped dimensions is transposed;
// anything else is a *ShapeError.
func (f *Field) Conform(rows, cols int) (*Field, error) {
	n := rows * cols
	switch {
	case len(f.Values) != f.Rows*f.Cols || len(f.Values) != n:
	case f.Rows == rows && f.Cols == cols:
		return f, nil
	case f.Rows == 1 || f.Cols == 1:
		return &Field{Rows: rows, Cols: cols, Values: f.Values, Variance: f.Variance}, nil
	case f.Rows == cols && f.Cols == rows:
		out := &Field{Rows: rows, Cols: cols, Values: transpose(f.Values, f.Rows, f.Cols)}
		if f.Variance != nil {
			out.Variance = transpose(f.Variance, f.Rows, f.Cols)
		}
		return out, nil
	}
	return nil, &ShapeError{WantRows: rows, WantCols: cols, Rows: f.Rows, Cols: f.Cols, Len: len(f.Values)}
}

// transpose returns the r x c row-major matrix v as c x r.
func transpose(v []float64, r, c int) []float64 {
	out := make([]float64, len(v))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j*r+i] = v[i*c+j]
		}
	}
	return out
}
