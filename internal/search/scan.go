package search

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/sim"
)

// EnergyRange samples [Min, Max] every Step.
type EnergyRange struct {
	Min  float64
	Max  float64
	Step float64
}

func (r EnergyRange) Validate() error {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite energy range", eigen.ErrConfiguration)
		}
	}
	if r.Max <= r.Min || r.Step <= 0 {
		return fmt.Errorf("%w: energy range [%g, %g] step %g", eigen.ErrConfiguration, r.Min, r.Max, r.Step)
	}
	return nil
}

// Samples returns Min, Min+Step, … up to and including Max.
func (r EnergyRange) Samples() []float64 {
	n := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	out := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, r.Min+float64(i)*r.Step)
	}
	if last := out[len(out)-1]; r.Max-last > 1e-9*r.Step {
		out = append(out, r.Max)
	}
	return out
}

// Scan shoots at every sampled energy with a fixed parity and returns a
// bracket for each adjacent pair whose endpoints differ in sign. ParityAuto
// scans both parities, even first.
func Scan(ctx context.Context, shooter *sim.Shooter, sys eigen.System, g *eigen.Grid, r EnergyRange, parity eigen.Parity) ([]eigen.Bracket, error) {
	if sys == nil || g == nil {
		return nil, eigen.ErrConfiguration
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if shooter == nil {
		shooter = sim.NewShooter(nil, sim.DefaultConfig())
	}
	if parity == eigen.ParityAuto {
		even, err := Scan(ctx, shooter, sys, g, r, eigen.Even)
		if err != nil {
			return nil, err
		}
		odd, err := Scan(ctx, shooter, sys, g, r, eigen.Odd)
		if err != nil {
			return nil, err
		}
		return append(even, odd...), nil
	}

	energies := r.Samples()
	var out []eigen.Bracket
	prevE, prevF := 0.0, math.NaN()
	for _, e := range energies {
		f, err := shooter.Endpoint(ctx, sys, g, e, parity)
		if err != nil {
			if eigen.IsConvergenceFailure(err) {
				prevF = math.NaN()
				continue
			}
			return nil, err
		}
		if !math.IsNaN(prevF) && math.Signbit(prevF) != math.Signbit(f) {
			out = append(out, eigen.Bracket{Low: prevE, High: e, Parity: parity})
		}
		prevE, prevF = e, f
	}
	return out, nil
}
