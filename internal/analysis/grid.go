package analysis

import (
	"math"

	"scfscan/domain/core"
)

// Logspace returns n log10-spaced values from lo to hi inclusive. Both
// endpoints must be positive.
func Logspace(lo, hi float64, n int) ([]float64, error) {
	if lo <= 0 || hi <= 0 {
		return nil, core.NewValidationError("axis bounds", "must be positive for log spacing")
	}
	if n < 1 {
		return nil, core.NewValidationError("axis points", "must be at least 1")
	}
	if n == 1 {
		return []float64{lo}, nil
	}

	loLog, hiLog := math.Log10(lo), math.Log10(hi)
	out := make([]float64, n)
	for i := range out {
		frac := float64(i) / float64(n-1)
		out[i] = math.Pow(10, loLog+frac*(hiLog-loLog))
	}
	return out, nil
}

// Meshgrid expands two axes into grids of shape [len(xs)][len(ys)]: xGrid
// repeats xs down rows, yGrid repeats ys across columns.
func Meshgrid(xs, ys []float64) (xGrid, yGrid [][]float64) {
	xGrid = make([][]float64, len(xs))
	yGrid = make([][]float64, len(xs))
	for i, x := range xs {
		xGrid[i] = make([]float64, len(ys))
		yGrid[i] = make([]float64, len(ys))
		for j, y := range ys {
			xGrid[i][j] = x
			yGrid[i][j] = y
		}
	}
	return xGrid, yGrid
}
