package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/integrators"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
)

type Registry struct {
	models      map[string]func() eigen.System
	integrators map[string]func() eigen.Integrator
	solvers     map[string]func() search.RootSolver
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() eigen.System),
		integrators: make(map[string]func() eigen.Integrator),
		solvers:     make(map[string]func() search.RootSolver),
	}

	r.models["infinite"] = func() eigen.System { return potentials.NewInfiniteWell() }
	r.models["finite"] = func() eigen.System { return potentials.NewFiniteWell(potentials.DefaultV0) }
	r.models["harmonic"] = func() eigen.System { return potentials.NewHarmonicOscillator() }

	r.integrators["rk4"] = func() eigen.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() eigen.Integrator { return integrators.NewRK45() }

	r.solvers["brent"] = func() search.RootSolver { return search.NewBrent() }
	r.solvers["neldermead"] = func() search.RootSolver { return search.NewNelderMead() }

	return r
}

func (r *Registry) GetModel(name string) (eigen.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model: %s", eigen.ErrConfiguration, name)
	}
	return fn(), nil
}

// GetIntegrator returns a factory; the shooter builds one integrator per shot.
func (r *Registry) GetIntegrator(name string) (func() eigen.Integrator, error) {
	if name == "" {
		name = "rk45"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", eigen.ErrConfiguration, name)
	}
	return fn, nil
}

func (r *Registry) GetRootSolver(name string) (search.RootSolver, error) {
	if name == "" {
		name = "brent"
	}
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown root solver: %s", eigen.ErrConfiguration, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string      { return keys(r.models) }
func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListRootSolvers() []string { return keys(r.solvers) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
