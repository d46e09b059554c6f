package profile

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Method selects how slice profiles are smoothed.
type Method string

const (
	SavitzkyGolayMethod Method = "savgol"
	MovingAverageMethod Method = "moving"
	NoSmoothing         Method = "none"
)

const (
	savgolWindow    = 11
	savgolMinWindow = 5
	savgolOrder     = 3
	movingWindow    = 5
)

// ParseMethod parses a smoothing method name. Empty selects Savitzky-Golay.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SavitzkyGolayMethod, nil
	case SavitzkyGolayMethod, MovingAverageMethod, NoSmoothing:
		return m, nil
	default:
		return "", fmt.Errorf("unknown smoothing %q (want savgol, moving or none)", s)
	}
}

// Apply smooths y. The Savitzky-Golay window shrinks to the largest odd
// length that fits the data, but never below five points; shorter inputs
// are returned unsmoothed.
func (m Method) Apply(y []float64) ([]float64, error) {
	switch m {
	case MovingAverageMethod:
		return MovingAverage(y, movingWindow), nil
	case NoSmoothing:
		return append([]float64(nil), y...), nil
	}

	n := len(y)
	w := min(savgolWindow, n-(n+1)%2)
	w = max(w, savgolMinWindow)
	if w%2 == 0 {
		w++
	}
	if n < w {
		return append([]float64(nil), y...), nil
	}
	return SavitzkyGolay(y, w, savgolOrder)
}

// MovingAverage returns the centred running mean of y over window points,
// treating values beyond either end as zero. The output has len(y)
// elements.
func MovingAverage(y []float64, window int) []float64 {
	out := make([]float64, len(y))
	if window <= 0 {
		return out
	}
	lead := (window - 1) / 2
	for i := range y {
		sum := 0.0
		for j := i + lead - window + 1; j <= i+lead; j++ {
			if j >= 0 && j < len(y) {
				sum += y[j]
			}
		}
		out[i] = sum / float64(window)
	}
	return out
}

// SavitzkyGolay smooths y with a least-squares polynomial of the given
// order over an odd window. Points within half a window of either end are
// taken from the polynomial fitted to the first or last full window.
func SavitzkyGolay(y []float64, window, order int) ([]float64, error) {
	n := len(y)
	switch {
	case window < 1 || window%2 == 0:
		return nil, fmt.Errorf("savgol window %d must be a positive odd number", window)
	case order < 0 || order >= window:
		return nil, fmt.Errorf("savgol order %d must be in [0, %d)", order, window)
	case n < window:
		return nil, fmt.Errorf("savgol window %d exceeds %d samples", window, n)
	}

	h, err := hatMatrix(window, order)
	if err != nil {
		return nil, err
	}
	half := window / 2
	apply := func(row, start int) float64 {
		sum := 0.0
		for j := 0; j < window; j++ {
			sum += h.At(row, j) * y[start+j]
		}
		return sum
	}

	out := make([]float64, n)
	for i := range y {
		switch {
		case i < half:
			out[i] = apply(i, 0)
		case i >= n-half:
			out[i] = apply(i-(n-window), n-window)
		default:
			out[i] = apply(half, i-half)
		}
	}
	return out, nil
}

// hatMatrix returns A (AᵀA)⁻¹ Aᵀ for the Vandermonde matrix A of the
// window offsets -half..half. Row r gives the weights that evaluate the
// fitted polynomial at offset r-half.
func hatMatrix(window, order int) (*mat.Dense, error) {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		v := 1.0
		for k := 0; k <= order; k++ {
			a.Set(i, k, v)
			v *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var proj mat.Dense
	if err := proj.Solve(&ata, a.T()); err != nil {
		return nil, fmt.Errorf("failed to build savgol filter: %w", err)
	}
	var h mat.Dense
	h.Mul(a, &proj)
	return &h, nil
}
