package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/qwell/internal/config"
	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
	"github.com/san-kum/qwell/internal/sim"
)

type Mode string

const (
	ModeSolve   Mode = config.ModeSolve
	ModeBracket Mode = config.ModeBracket
	ModeScan    Mode = config.ModeScan
	ModeFinite  Mode = config.ModeFinite
)

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.log = l
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) {
		if r != nil {
			e.registry = r
		}
	}
}

// Experiment binds a grid and a model system to one search mode and keeps
// the outcomes of the last run. Configure it with SetGrid and SetModel (or
// Setup from a config) before running.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *zap.Logger

	grid    *eigen.Grid
	sys     eigen.System
	shooter *sim.Shooter

	mode     Mode
	outcomes []sim.Outcome
	roots    []search.Roots
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) SetGrid(xMin, xMax, xStep float64) error {
	g, err := eigen.NewGrid(xMin, xMax, xStep)
	if err != nil {
		return err
	}
	e.grid = g
	return nil
}

func (e *Experiment) SetModel(sys eigen.System) {
	e.sys = sys
}

// Setup builds the grid, the model and the shooter from the config. Search
// tuning is applied to the model so the bisector picks it up.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if err := e.SetGrid(e.cfg.Grid.XMin, e.cfg.Grid.XMax, e.cfg.Grid.XStep); err != nil {
		return err
	}

	sys, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	if err := e.configure(sys); err != nil {
		return err
	}
	e.SetModel(sys)
	e.mode = Mode(e.cfg.Mode)

	factory, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	simCfg := sim.DefaultConfig()
	if e.cfg.Substeps > 0 {
		simCfg.Substeps = e.cfg.Substeps
	}
	e.shooter = sim.NewShooter(factory, simCfg)
	return nil
}

func (e *Experiment) configure(sys eigen.System) error {
	c, ok := sys.(eigen.Configurable)
	if !ok {
		return nil
	}
	params := e.cfg.ModelParams()
	if e.cfg.Search.Iterations > 0 {
		params["iterations"] = float64(e.cfg.Search.Iterations)
	}
	if e.cfg.Search.Tolerance > 0 {
		params["tolerance"] = e.cfg.Search.Tolerance
	}
	for name, v := range params {
		if err := c.SetParam(name, v); err != nil {
			return fmt.Errorf("%w: %v", eigen.ErrConfiguration, err)
		}
	}
	return nil
}

// Run dispatches on the configured mode.
func (e *Experiment) Run(ctx context.Context) ([]sim.Outcome, error) {
	switch e.mode {
	case ModeSolve:
		cands, err := e.cfg.Candidates()
		if err != nil {
			return nil, err
		}
		return e.Solve(ctx, cands)
	case ModeBracket:
		brackets, err := e.cfg.BracketList()
		if err != nil {
			return nil, err
		}
		return e.Bracket(ctx, brackets)
	case ModeScan:
		parities, err := e.cfg.ScanParities()
		if err != nil {
			return nil, err
		}
		r := search.EnergyRange{Min: e.cfg.Scan.Min, Max: e.cfg.Scan.Max, Step: e.cfg.Scan.Step}
		return e.Scan(ctx, r, parities...)
	case ModeFinite:
		return e.Finite(ctx, e.cfg.Params.Z0s...)
	}
	return nil, fmt.Errorf("%w: experiment not setup", eigen.ErrConfiguration)
}

// Solve shoots each candidate energy directly.
func (e *Experiment) Solve(ctx context.Context, candidates []eigen.Candidate) ([]sim.Outcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.mode = ModeSolve
	e.roots = nil
	e.outcomes = e.batch(e.sys).SolveAll(ctx, candidates)
	return e.outcomes, nil
}

// Bracket refines each bracket by bisection before solving.
func (e *Experiment) Bracket(ctx context.Context, brackets []eigen.Bracket) ([]sim.Outcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.mode = ModeBracket
	e.roots = nil
	e.outcomes = e.batch(e.sys).BracketAll(ctx, e.bisector(e.sys), brackets)
	return e.outcomes, nil
}

// Scan samples the energy range for every parity, then refines the
// brackets it finds.
func (e *Experiment) Scan(ctx context.Context, r search.EnergyRange, parities ...eigen.Parity) ([]sim.Outcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if len(parities) == 0 {
		parities = []eigen.Parity{eigen.Even, eigen.Odd}
	}

	var brackets []eigen.Bracket
	for _, p := range parities {
		found, err := search.Scan(ctx, e.shooter, e.sys, e.grid, r, p)
		if err != nil {
			return nil, err
		}
		e.log.Debug("energy scan", zap.Stringer("parity", p), zap.Int("brackets", len(found)))
		brackets = append(brackets, found...)
	}

	e.mode = ModeScan
	e.roots = nil
	e.outcomes = e.batch(e.sys).BracketAll(ctx, e.bisector(e.sys), brackets)
	return e.outcomes, nil
}

// Finite solves the finite-well equations for every z0, brackets the roots
// and refines them on a well of matching depth. Solutions are labelled with
// their z0.
func (e *Experiment) Finite(ctx context.Context, z0s ...float64) ([]sim.Outcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	solver, err := e.registry.GetRootSolver(e.cfg.Search.RootSolver)
	if err != nil {
		return nil, err
	}

	var (
		outcomes []sim.Outcome
		roots    []search.Roots
	)
	for _, z0 := range z0s {
		rs, err := search.FiniteWellRoots(ctx, z0, search.RootOptions{
			Solver:  solver,
			Workers: e.cfg.Workers,
			Logger:  e.log,
		})
		if err != nil {
			return nil, err
		}
		roots = append(roots, rs)

		well := e.wellFor(z0)
		brackets := search.AllBrackets(rs, e.cfg.Search.Margin)
		batch := e.batch(well).BracketAll(ctx, e.bisector(well), brackets)
		for _, o := range batch {
			if o.OK() {
				o.Solution.Label = Z0Label(z0, o.Solution)
			}
			o.Index = len(outcomes)
			outcomes = append(outcomes, o)
		}
		e.log.Info("finite well solved",
			zap.Float64("z0", z0),
			zap.Int("roots", rs.Len()),
			zap.Int("solutions", len(sim.Successes(batch))))
	}

	e.mode = ModeFinite
	e.roots = roots
	e.outcomes = outcomes
	return outcomes, nil
}

// Z0Label names a finite-well solution by its well strength.
func Z0Label(z0 float64, sol *eigen.Solution) string {
	return fmt.Sprintf("z0 = %g, ε = %.3f", z0, sol.Energy)
}

// wellFor builds the well of strength z0. The wall stays at DefaultWall so
// that ZToEnergy maps roots onto this well's energies.
func (e *Experiment) wellFor(z0 float64) *potentials.FiniteWell {
	well := potentials.NewFiniteWellZ0(z0)
	if base, ok := e.sys.(*potentials.FiniteWell); ok {
		well.Iterations = base.Iterations
		well.Tol = base.Tol
	}
	return well
}

func (e *Experiment) ready() error {
	if e.grid == nil || e.sys == nil {
		return eigen.ErrConfiguration
	}
	if e.shooter == nil {
		e.shooter = sim.NewShooter(nil, sim.DefaultConfig())
	}
	return nil
}

func (e *Experiment) batch(sys eigen.System) *sim.Batch {
	return sim.NewBatch(e.shooter, sys, e.grid,
		sim.WithWorkers(e.cfg.Workers),
		sim.WithLogger(e.log))
}

func (e *Experiment) bisector(sys eigen.System) *search.Bisector {
	return search.NewBisector(e.shooter, sys, e.grid, search.WithLogger(e.log))
}

func (e *Experiment) Config() *config.Config  { return e.cfg }
func (e *Experiment) Grid() *eigen.Grid       { return e.grid }
func (e *Experiment) System() eigen.System    { return e.sys }
func (e *Experiment) Mode() Mode              { return e.mode }
func (e *Experiment) Outcomes() []sim.Outcome { return e.outcomes }
func (e *Experiment) Roots() []search.Roots   { return e.roots }
func (e *Experiment) Failures() []error       { return sim.Failures(e.outcomes) }
func (e *Experiment) Solutions() []*eigen.Solution {
	return sim.Successes(e.outcomes)
}
