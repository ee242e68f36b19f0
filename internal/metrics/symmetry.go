package metrics

import (
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

// SymmetryError is max |ψ(x) - p·ψ(-x)| over the mirrored arrays, with p = +1
// for even and -1 for odd solutions.
type SymmetryError struct{}

func (SymmetryError) Name() string { return "symmetry_error" }

func (SymmetryError) Compute(g *eigen.Grid, sol *eigen.Solution) float64 {
	xs, ys := sol.Mirror(g)
	if len(ys) == 0 || len(xs) != len(ys) {
		return math.NaN()
	}
	sign := sol.Parity.Sign()
	worst := 0.0
	for i, j := 0, len(ys)-1; i <= j; i, j = i+1, j-1 {
		worst = math.Max(worst, math.Abs(ys[j]-sign*ys[i]))
	}
	return worst
}
