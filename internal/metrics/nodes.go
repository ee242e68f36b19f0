package metrics

import (
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

// nodeThreshold ignores samples below this fraction of the peak so that the
// near-zero tail at the boundary does not add spurious nodes.
const nodeThreshold = 1e-3

// Nodes counts sign changes of the mirrored wavefunction. The n-th bound
// state (n = 1, 2, …) has n-1 nodes.
type Nodes struct{}

func (Nodes) Name() string { return "nodes" }

func (Nodes) Compute(g *eigen.Grid, sol *eigen.Solution) float64 {
	_, ys := sol.Mirror(g)
	peak := maxAbs(ys)
	if peak == 0 {
		return 0
	}

	count := 0
	prev := 0.0
	for _, v := range ys {
		if math.Abs(v) < nodeThreshold*peak {
			continue
		}
		if prev != 0 && (v > 0) != (prev > 0) {
			count++
		}
		prev = v
	}
	return float64(count)
}

func maxAbs(ys []float64) float64 {
	m := 0.0
	for _, v := range ys {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
