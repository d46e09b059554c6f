package kriging

import "math"

const (
	// DefaultBins is the number of lag bins in the empirical variogram.
	DefaultBins = 20
	// DefaultMaxSamples caps the points used to estimate the variogram.
	DefaultMaxSamples = 2000
)

// Point is a projected sample: planar coordinates in metres and the
// observed value.
type Point struct {
	X, Y  float64
	Value float64
}

// Bin is one lag class of an empirical variogram.
type Bin struct {
	Lag   float64 // mean pair distance
	Gamma float64 // mean half squared difference
	Pairs int
}

// Variogram is an empirical semivariogram. Only populated bins are kept.
type Variogram struct {
	Bins        []Bin
	MaxDistance float64
}

// EstimateVariogram bins every sample pair closer than half the bounding
// box diagonal into nbins equal-width lag classes. Datasets larger than
// maxSamples are thinned by taking every k-th point, so the estimate is
// deterministic. Returns ErrNoPairs when no pair falls in range.
func EstimateVariogram(points []Point, nbins, maxSamples int) (*Variogram, error) {
	if nbins <= 0 {
		nbins = DefaultBins
	}
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	points = thin(points, maxSamples)

	maxDist := diagonal(points) / 2
	if len(points) < 2 || !(maxDist > 0) {
		return nil, ErrNoPairs
	}
	width := maxDist / float64(nbins)

	lags := make([]float64, nbins)
	gammas := make([]float64, nbins)
	counts := make([]int, nbins)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			h := math.Hypot(points[i].X-points[j].X, points[i].Y-points[j].Y)
			if h <= 0 || h > maxDist {
				continue
			}
			b := min(int(h/width), nbins-1)
			d := points[i].Value - points[j].Value
			lags[b] += h
			gammas[b] += 0.5 * d * d
			counts[b]++
		}
	}

	v := &Variogram{MaxDistance: maxDist}
	for b := range counts {
		if counts[b] == 0 {
			continue
		}
		n := float64(counts[b])
		v.Bins = append(v.Bins, Bin{Lag: lags[b] / n, Gamma: gammas[b] / n, Pairs: counts[b]})
	}
	if len(v.Bins) == 0 {
		return nil, ErrNoPairs
	}
	return v, nil
}

// thin returns at most limit points taken at a fixed stride.
func thin(points []Point, limit int) []Point {
	if len(points) <= limit {
		return points
	}
	stride := (len(points) + limit - 1) / limit
	out := make([]Point, 0, limit)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out
}
