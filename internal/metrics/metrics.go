package metrics

import "github.com/san-kum/qwell/internal/eigen"

// Metric is a scalar diagnostic of a normalized solution.
type Metric interface {
	Name() string
	Compute(g *eigen.Grid, sol *eigen.Solution) float64
}

func Default() []Metric {
	return []Metric{
		Nodes{},
		Residual{},
		NormError{},
		SymmetryError{},
		Peak{},
	}
}

// Apply stores every metric on the solution.
func Apply(g *eigen.Grid, sol *eigen.Solution, ms []Metric) {
	if sol.Metrics == nil {
		sol.Metrics = make(map[string]float64, len(ms))
	}
	for _, m := range ms {
		sol.Metrics[m.Name()] = m.Compute(g, sol)
	}
}
