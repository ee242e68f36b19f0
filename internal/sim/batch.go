package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/metrics"
)

// Outcome is the result for one batch item: exactly one of Solution and Err
// is set. Index is the position of the item in the input.
type Outcome struct {
	Index    int
	Solution *eigen.Solution
	Err      error
}

func (o Outcome) OK() bool { return o.Err == nil && o.Solution != nil }

// Refiner narrows a bracket to an energy estimate.
type Refiner interface {
	Solve(ctx context.Context, b eigen.Bracket) (eigen.Estimate, error)
}

type Option func(*Batch)

func WithWorkers(n int) Option {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Batch) {
		if l != nil {
			b.log = l
		}
	}
}

// WithMetrics replaces the diagnostics computed for every solution. A nil
// slice disables them.
func WithMetrics(ms []metrics.Metric) Option {
	return func(b *Batch) { b.metrics = ms }
}

// Batch turns candidates or brackets into normalized solutions. Items are
// independent; a failed item never aborts the others.
type Batch struct {
	shooter *Shooter
	sys     eigen.System
	grid    *eigen.Grid
	workers int
	log     *zap.Logger
	metrics []metrics.Metric
}

func NewBatch(shooter *Shooter, sys eigen.System, g *eigen.Grid, opts ...Option) *Batch {
	if shooter == nil {
		shooter = NewShooter(nil, DefaultConfig())
	}
	b := &Batch{
		shooter: shooter,
		sys:     sys,
		grid:    g,
		workers: runtime.NumCPU(),
		log:     zap.NewNop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Batch) Grid() *eigen.Grid    { return b.grid }
func (b *Batch) System() eigen.System { return b.sys }
func (b *Batch) Shooter() *Shooter    { return b.shooter }

// SolveAll shoots every candidate at its own energy.
func (b *Batch) SolveAll(ctx context.Context, candidates []eigen.Candidate) []Outcome {
	return b.run(ctx, len(candidates), func(ctx context.Context, i int) (*eigen.Solution, error) {
		c := candidates[i].Resolve()
		sol, err := b.solve(ctx, c.Value, c.Parity)
		if err != nil {
			return nil, &eigen.CandidateError{Index: i, Energy: c.Value, Parity: c.Parity, Wrapped: err}
		}
		return sol, nil
	})
}

// BracketAll refines every bracket with r and shoots at the estimate.
// Exhausted refinements still produce a solution carrying the estimate.
func (b *Batch) BracketAll(ctx context.Context, r Refiner, brackets []eigen.Bracket) []Outcome {
	return b.run(ctx, len(brackets), func(ctx context.Context, i int) (*eigen.Solution, error) {
		br := brackets[i]
		if br.Parity == eigen.ParityAuto {
			br.Parity = eigen.Classify(br.Mid())
		}
		fail := func(err error) error {
			return &eigen.CandidateError{Index: i, Energy: br.Mid(), Parity: br.Parity, Wrapped: err}
		}
		if r == nil {
			return nil, fail(fmt.Errorf("%w: no refiner", eigen.ErrConfiguration))
		}

		est, err := r.Solve(ctx, br)
		if err != nil {
			return nil, fail(err)
		}
		if est.Degraded() {
			b.log.Warn("bisection exhausted its iteration cap",
				zap.Int("index", i),
				zap.Stringer("bracket", br),
				zap.Float64("energy", est.Energy),
				zap.Float64("width", est.Width()),
				zap.Int("iterations", est.Iterations))
		}

		sol, err := b.solve(ctx, est.Energy, br.Parity)
		if err != nil {
			return nil, fail(err)
		}
		sol.Estimate = &est
		return sol, nil
	})
}

func (b *Batch) solve(ctx context.Context, energy float64, parity eigen.Parity) (*eigen.Solution, error) {
	raw, err := b.shooter.Shoot(ctx, b.sys, b.grid, energy, parity)
	if err != nil {
		return nil, err
	}
	sol := eigen.NewSolution(energy, parity, raw)
	if err := NormalizeSolution(b.grid, sol); err != nil {
		return nil, err
	}
	metrics.Apply(b.grid, sol, b.metrics)
	return sol, nil
}

func (b *Batch) run(ctx context.Context, n int, fn func(context.Context, int) (*eigen.Solution, error)) []Outcome {
	out := make([]Outcome, n)
	for i := range out {
		out[i].Index = i
	}
	if b.sys == nil || b.grid == nil {
		for i := range out {
			out[i].Err = eigen.ErrConfiguration
		}
		return out
	}

	// Workers never return an error to the group, so ctx is only cancelled
	// by the caller.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			out[i].Err = gctx.Err()
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			sol, err := fn(gctx, i)
			if err != nil {
				out[i].Err = err
				b.log.Warn("candidate failed", zap.Int("index", i), zap.Error(err))
				return nil
			}
			out[i].Solution = sol
			b.log.Debug("candidate solved",
				zap.Int("index", i),
				zap.String("label", sol.Label),
				zap.Stringer("parity", sol.Parity))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Successes returns the solutions of the successful outcomes in input order.
func Successes(outcomes []Outcome) []*eigen.Solution {
	var sols []*eigen.Solution
	for _, o := range outcomes {
		if o.OK() {
			sols = append(sols, o.Solution)
		}
	}
	return sols
}

// Failures returns the errors of the failed outcomes in input order.
func Failures(outcomes []Outcome) []error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Err joins every failure, or returns nil when all items succeeded.
func Err(outcomes []Outcome) error {
	return errors.Join(Failures(outcomes)...)
}
