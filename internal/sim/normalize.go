package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

// Rule selects which end of each interval a rectangle is sampled at.
type Rule int

const (
	RuleLower Rule = iota
	RuleUpper
)

// Integrate sums y²·dx over the grid with left (RuleLower) or right
// (RuleUpper) rectangles.
func Integrate(g *eigen.Grid, y []float64, rule Rule) float64 {
	offset := 0
	if rule == RuleUpper {
		offset = 1
	}

	n := g.Len()
	if len(y) < n {
		n = len(y)
	}

	integral := 0.0
	for i := 0; i < n-1; i++ {
		dx := math.Abs(g.At(i+1) - g.At(i))
		v := y[i+offset]
		integral += v * v * dx
	}
	return integral
}

// Normalize scales a half-domain solution so the density over the mirrored
// full domain integrates to one. The half-domain integral is the mean of the
// two rectangle rules and the factor is √(2·integral).
func Normalize(g *eigen.Grid, raw []float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, eigen.ErrEmptyResult
	}
	if len(raw) != g.Len() {
		return nil, fmt.Errorf("%w: %d samples for %d grid points", eigen.ErrConfiguration, len(raw), g.Len())
	}

	lower := Integrate(g, raw, RuleLower)
	upper := Integrate(g, raw, RuleUpper)
	integral := (lower + upper) / 2

	if integral <= 0 || math.IsNaN(integral) || math.IsInf(integral, 0) {
		return nil, eigen.ErrZeroNorm
	}

	factor := math.Sqrt(2 * integral)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v / factor
	}
	return out, nil
}

// NormalizeSolution fills sol.Normalized from sol.Raw.
func NormalizeSolution(g *eigen.Grid, sol *eigen.Solution) error {
	if sol == nil {
		return eigen.ErrEmptyResult
	}
	norm, err := Normalize(g, sol.Raw)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", sol.Label, err)
	}
	sol.Normalized = norm
	return nil
}
