package potentials

import (
	"fmt"
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

// InfiniteWell models a particle between hard walls at x = ±0.5 (units of the
// well width). Integrate over [0, 0.5].
type InfiniteWell struct {
	tuning
}

func NewInfiniteWell() *InfiniteWell {
	return &InfiniteWell{}
}

func (w *InfiniteWell) Label() string { return "Infinite Well Potential" }

func (w *InfiniteWell) Derive(_ float64, s eigen.State, energy float64) eigen.State {
	return eigen.State{s[1], -math.Pi * math.Pi * energy * s[0]}
}

func (w *InfiniteWell) InitialCondition(p eigen.Parity) eigen.State {
	return initialCondition(p)
}

func (w *InfiniteWell) V(float64) float64 { return 0 }

func (w *InfiniteWell) GetParams() map[string]float64 {
	return map[string]float64{"iterations": float64(w.Iterations), "tolerance": w.Tol}
}

func (w *InfiniteWell) SetParam(name string, v float64) error {
	if !w.setTuning(name, v) {
		return fmt.Errorf("infinite well: unknown parameter %q", name)
	}
	return nil
}
