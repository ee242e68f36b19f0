package potentials

import (
	"fmt"
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

const (
	DefaultWall = 0.5
	DefaultV0   = 8.0
)

// FiniteWell is a square well of depth V0 between ±Wall. Both V0 and ε are
// measured in units of the infinite-well ground state energy.
type FiniteWell struct {
	V0   float64
	Wall float64
	tuning
}

func NewFiniteWell(v0 float64) *FiniteWell {
	return &FiniteWell{V0: v0, Wall: DefaultWall}
}

// NewFiniteWellZ0 builds the well whose quantization condition has strength
// z0, i.e. V0 = (2·z0/π)² for a well of unit width.
func NewFiniteWellZ0(z0 float64) *FiniteWell {
	return NewFiniteWell(DepthForZ0(z0))
}

func DepthForZ0(z0 float64) float64 {
	v := 2 * z0 / math.Pi
	return v * v
}

func Z0ForDepth(v0 float64) float64 {
	return math.Pi / 2 * math.Sqrt(v0)
}

func (w *FiniteWell) Label() string { return "Finite Well Potential" }

func (w *FiniteWell) V(x float64) float64 {
	if math.Abs(x) <= w.Wall {
		return 0
	}
	return w.V0
}

func (w *FiniteWell) Derive(x float64, s eigen.State, energy float64) eigen.State {
	return eigen.State{s[1], math.Pi * math.Pi * (w.V(x) - energy) * s[0]}
}

func (w *FiniteWell) InitialCondition(p eigen.Parity) eigen.State {
	return initialCondition(p)
}

func (w *FiniteWell) GetParams() map[string]float64 {
	return map[string]float64{
		"v0":         w.V0,
		"wall":       w.Wall,
		"iterations": float64(w.Iterations),
		"tolerance":  w.Tol,
	}
}

func (w *FiniteWell) SetParam(name string, v float64) error {
	switch name {
	case "v0":
		if v < 0 {
			return fmt.Errorf("finite well: v0 must be non-negative, got %g", v)
		}
		w.V0 = v
	case "z0":
		w.V0 = DepthForZ0(v)
	case "wall":
		if v <= 0 {
			return fmt.Errorf("finite well: wall must be positive, got %g", v)
		}
		w.Wall = v
	default:
		if !w.setTuning(name, v) {
			return fmt.Errorf("finite well: unknown parameter %q", name)
		}
	}
	return nil
}
