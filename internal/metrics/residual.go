package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/qwell/internal/eigen"
)

// Residual is |ψ| at the far boundary of the normalized solution.
type Residual struct{}

func (Residual) Name() string { return "residual" }

func (Residual) Compute(_ *eigen.Grid, sol *eigen.Solution) float64 {
	vals := sol.Values()
	if len(vals) == 0 {
		return math.NaN()
	}
	return math.Abs(vals[len(vals)-1])
}

// NormError is |∫ψ²dx - 1| over the mirrored domain using the trapezoid rule.
type NormError struct{}

func (NormError) Name() string { return "norm_error" }

func (NormError) Compute(g *eigen.Grid, sol *eigen.Solution) float64 {
	xs, ys := sol.Mirror(g)
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}
	return math.Abs(Density(xs, ys) - 1)
}

// Density integrates ψ² over xs with the trapezoid rule. Short, mismatched
// or unsorted inputs give NaN.
func Density(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) || !sort.Float64sAreSorted(xs) {
		return math.NaN()
	}
	sq := make([]float64, len(ys))
	for i, y := range ys {
		sq[i] = y * y
	}
	return integrate.Trapezoidal(xs, sq)
}

type Peak struct{}

func (Peak) Name() string { return "peak" }

func (Peak) Compute(_ *eigen.Grid, sol *eigen.Solution) float64 {
	return maxAbs(sol.Values())
}
