package potentials

import (
	"fmt"
	"math"

	"github.com/san-kum/qwell/internal/eigen"
)

// Oscillator conventions for the x² coefficient. With C = 1/4 the equation is
// the parabolic-cylinder form and ε_n = n + 1/2; with C = 1/2 the levels are
// ε_n = (n + 1/2)·√2.
const (
	ConventionQuarter = 0.25
	ConventionHalf    = 0.5
)

type HarmonicOscillator struct {
	C float64
	tuning
}

func NewHarmonicOscillator() *HarmonicOscillator {
	return &HarmonicOscillator{C: ConventionQuarter}
}

func (h *HarmonicOscillator) Label() string { return "Harmonic Oscillator" }

func (h *HarmonicOscillator) V(x float64) float64 { return h.C * x * x }

func (h *HarmonicOscillator) Derive(x float64, s eigen.State, energy float64) eigen.State {
	return eigen.State{s[1], (h.C*x*x - energy) * s[0]}
}

func (h *HarmonicOscillator) InitialCondition(p eigen.Parity) eigen.State {
	return initialCondition(p)
}

// Level returns the exact eigenvalue of the n-th state for the configured
// convention.
func (h *HarmonicOscillator) Level(n int) float64 {
	return (float64(n) + 0.5) * 2 * math.Sqrt(h.C)
}

func (h *HarmonicOscillator) GetParams() map[string]float64 {
	return map[string]float64{"c": h.C, "iterations": float64(h.Iterations), "tolerance": h.Tol}
}

func (h *HarmonicOscillator) SetParam(name string, v float64) error {
	if name == "c" {
		if v <= 0 {
			return fmt.Errorf("harmonic oscillator: c must be positive, got %g", v)
		}
		h.C = v
		return nil
	}
	if !h.setTuning(name, v) {
		return fmt.Errorf("harmonic oscillator: unknown parameter %q", name)
	}
	return nil
}
