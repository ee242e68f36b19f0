package eigen

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is a model potential. Derive returns (ψ′, ψ″) at position x for the
// trial energy.
type System interface {
	Derive(x float64, s State, energy float64) State
	InitialCondition(p Parity) State
	Label() string
}

// Tuned lets a model override the bisection defaults. Non-positive values
// keep the defaults.
type Tuned interface {
	IterationCap() int
	Tolerance() float64
}

// Potential is implemented by models that can report V(x), used for drawing.
type Potential interface {
	V(x float64) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Candidate is a trial energy. A ParityAuto candidate is classified from its
// value before shooting.
type Candidate struct {
	Value  float64
	Parity Parity
}

func (c Candidate) Resolve() Candidate {
	if c.Parity == ParityAuto {
		c.Parity = Classify(c.Value)
	}
	return c
}

// Bracket is an energy interval expected to hold exactly one sign change of
// the shooting endpoint.
type Bracket struct {
	Low    float64
	High   float64
	Parity Parity
}

func (b Bracket) Width() float64 {
	return math.Abs(b.High - b.Low)
}

func (b Bracket) Mid() float64 {
	return (b.Low + b.High) / 2
}

func (b Bracket) String() string {
	return fmt.Sprintf("[%.6g, %.6g] %s", b.Low, b.High, b.Parity)
}

// Integrator advances s from x by h for a fixed trial energy.
type Integrator interface {
	Step(sys System, x float64, s State, energy, h float64) State
}

// AdaptiveIntegrator also reports the scaled local error of the step (≤ 1
// means accepted) and the step size it suggests next.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x float64, s State, energy, h, atol, rtol float64) (State, float64, float64)
}
