// Package kriging interpolates scattered RSSI samples onto a regular planar
// grid with ordinary kriging.
//
// The work is split the same way as the rest of the survey pipeline: a
// Fitter turns samples into a variogram Model, an Evaluator turns a Model
// and the samples into a Field over a Grid, and Interpolate chains the two
// with a deterministic fallback when fitting or solving fails.
//
//	pts := []kriging.Point{{X: 0, Y: 0, Value: -60}, ...}
//	grid, _ := kriging.NewGrid(bound, 30)
//	res, err := kriging.Interpolate(pts, grid, kriging.VariogramFitter{Family: kriging.Auto}, kriging.Options{})
package kriging
