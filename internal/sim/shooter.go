package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/integrators"
)

type Config struct {
	Atol     float64
	Rtol     float64
	Substeps int
	MinStep  float64
}

func DefaultConfig() Config {
	return Config{
		Atol:     integrators.DefaultAtol,
		Rtol:     integrators.DefaultRtol,
		Substeps: 4,
		MinStep:  1e-12,
	}
}

// Shooter integrates a model from the first grid point to the last for a
// trial energy. Integrators are created per shot, so a Shooter may be shared
// between goroutines.
type Shooter struct {
	newIntegrator func() eigen.Integrator
	cfg           Config

	mu    sync.Mutex
	pools map[int]*SamplePool
}

func NewShooter(newIntegrator func() eigen.Integrator, cfg Config) *Shooter {
	if newIntegrator == nil {
		newIntegrator = func() eigen.Integrator { return integrators.NewRK45() }
	}
	def := DefaultConfig()
	if cfg.Atol <= 0 {
		cfg.Atol = def.Atol
	}
	if cfg.Rtol <= 0 {
		cfg.Rtol = def.Rtol
	}
	if cfg.Substeps <= 0 {
		cfg.Substeps = def.Substeps
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = def.MinStep
	}
	return &Shooter{
		newIntegrator: newIntegrator,
		cfg:           cfg,
		pools:         make(map[int]*SamplePool),
	}
}

// Shoot returns ψ at every grid point. Trial energies away from an eigenvalue
// are not errors; callers inspect the endpoint.
func (s *Shooter) Shoot(ctx context.Context, sys eigen.System, g *eigen.Grid, energy float64, parity eigen.Parity) ([]float64, error) {
	if err := ready(sys, g); err != nil {
		return nil, err
	}
	out := make([]float64, g.Len())
	if err := s.integrate(ctx, sys, g, energy, parity, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Endpoint returns only ψ(x_N).
func (s *Shooter) Endpoint(ctx context.Context, sys eigen.System, g *eigen.Grid, energy float64, parity eigen.Parity) (float64, error) {
	if err := ready(sys, g); err != nil {
		return 0, err
	}
	pool := s.pool(g.Len())
	buf := pool.Get()
	defer pool.Put(buf)

	if err := s.integrate(ctx, sys, g, energy, parity, buf); err != nil {
		return 0, err
	}
	return buf[len(buf)-1], nil
}

func ready(sys eigen.System, g *eigen.Grid) error {
	if sys == nil {
		return fmt.Errorf("%w: no model", eigen.ErrConfiguration)
	}
	if g == nil {
		return fmt.Errorf("%w: no grid", eigen.ErrConfiguration)
	}
	return nil
}

func (s *Shooter) pool(n int) *SamplePool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[n]
	if !ok {
		p = NewSamplePool(n)
		s.pools[n] = p
	}
	return p
}

func (s *Shooter) integrate(ctx context.Context, sys eigen.System, g *eigen.Grid, energy float64, parity eigen.Parity, out []float64) error {
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return fmt.Errorf("%w: non-finite trial energy", eigen.ErrConfiguration)
	}
	if parity == eigen.ParityAuto {
		parity = eigen.Classify(energy)
	}

	state := sys.InitialCondition(parity).Clone()
	out[0] = state[0]

	integ := s.newIntegrator()
	adaptive, isAdaptive := integ.(eigen.AdaptiveIntegrator)
	h := g.Step()

	var err error
	for i := 0; i < g.Len()-1; i++ {
		if i%64 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		x0, x1 := g.At(i), g.At(i+1)
		if isAdaptive {
			state, h, err = s.adaptiveInterval(adaptive, sys, x0, x1, state, energy, h)
			if err != nil {
				return &eigen.ShootError{Energy: energy, X: x0, Wrapped: err}
			}
		} else {
			dx := (x1 - x0) / float64(s.cfg.Substeps)
			for k := 0; k < s.cfg.Substeps; k++ {
				state = integ.Step(sys, x0+float64(k)*dx, state, energy, dx)
			}
		}

		if !state.IsValid() {
			return &eigen.ShootError{Energy: energy, X: x1, Wrapped: eigen.ErrDiverged}
		}
		out[i+1] = state[0]
	}

	return nil
}

// adaptiveInterval advances state from x0 to exactly x1, rejecting steps whose
// scaled error exceeds one.
func (s *Shooter) adaptiveInterval(integ eigen.AdaptiveIntegrator, sys eigen.System, x0, x1 float64, state eigen.State, energy, h float64) (eigen.State, float64, error) {
	x := x0
	for {
		remaining := x1 - x
		last := false
		hTry := h
		if hTry >= remaining {
			hTry = remaining
			last = true
		}
		if hTry < s.cfg.MinStep && !last {
			return state, h, eigen.ErrStepTooSmall
		}

		next, errNorm, hNew := integ.StepAdaptive(sys, x, state, energy, hTry, s.cfg.Atol, s.cfg.Rtol)
		if !next.IsValid() {
			return state, h, eigen.ErrDiverged
		}

		if errNorm <= 1 {
			state = next
			if last {
				// carry the untruncated step into the next interval
				return state, math.Max(h, hNew), nil
			}
			x += hTry
		}
		h = hNew
	}
}
