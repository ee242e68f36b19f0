package potentials

import "github.com/san-kum/qwell/internal/eigen"

// tuning carries the optional bisection overrides shared by all models.
type tuning struct {
	Iterations int
	Tol        float64
}

func (t tuning) IterationCap() int  { return t.Iterations }
func (t tuning) Tolerance() float64 { return t.Tol }

func initialCondition(p eigen.Parity) eigen.State {
	if p == eigen.Odd {
		return eigen.State{0, 1}
	}
	return eigen.State{1, 0}
}

func (t *tuning) setTuning(name string, v float64) bool {
	switch name {
	case "iterations":
		t.Iterations = int(v)
	case "tolerance":
		t.Tol = v
	default:
		return false
	}
	return true
}
