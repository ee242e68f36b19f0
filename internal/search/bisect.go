package search

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/sim"
)

const (
	DefaultTolerance  = 1e-6
	DefaultIterations = 20
)

type BisectOption func(*Bisector)

// WithTolerance fixes the bracket width at which bisection stops. It takes
// precedence over the model's own tuning.
func WithTolerance(tol float64) BisectOption {
	return func(b *Bisector) {
		if tol > 0 {
			b.tol = tol
		}
	}
}

// WithIterations fixes the iteration cap. It takes precedence over the
// model's own tuning.
func WithIterations(n int) BisectOption {
	return func(b *Bisector) {
		if n > 0 {
			b.maxIter = n
		}
	}
}

func WithLogger(l *zap.Logger) BisectOption {
	return func(b *Bisector) {
		if l != nil {
			b.log = l
		}
	}
}

// Bisector narrows energy brackets by halving them on the sign of the
// shooting endpoint ψ(x_N).
type Bisector struct {
	shooter *sim.Shooter
	sys     eigen.System
	grid    *eigen.Grid
	tol     float64
	maxIter int
	log     *zap.Logger
}

func NewBisector(shooter *sim.Shooter, sys eigen.System, g *eigen.Grid, opts ...BisectOption) *Bisector {
	if shooter == nil {
		shooter = sim.NewShooter(nil, sim.DefaultConfig())
	}
	b := &Bisector{
		shooter: shooter,
		sys:     sys,
		grid:    g,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if tuned, ok := sys.(eigen.Tuned); ok {
		if b.tol == 0 && tuned.Tolerance() > 0 {
			b.tol = tuned.Tolerance()
		}
		if b.maxIter == 0 && tuned.IterationCap() > 0 {
			b.maxIter = tuned.IterationCap()
		}
	}
	if b.tol == 0 {
		b.tol = DefaultTolerance
	}
	if b.maxIter == 0 {
		b.maxIter = DefaultIterations
	}
	return b
}

func (b *Bisector) Tolerance() float64 { return b.tol }
func (b *Bisector) Iterations() int    { return b.maxIter }

// Solve returns the midpoint of the final bracket. Hitting the iteration cap
// is not an error: the estimate comes back in the Exhausted state.
func (b *Bisector) Solve(ctx context.Context, br eigen.Bracket) (eigen.Estimate, error) {
	if b.sys == nil || b.grid == nil {
		return eigen.Estimate{}, eigen.ErrConfiguration
	}
	low, high := br.Low, br.High
	if low > high {
		low, high = high, low
	}
	if br.Parity == eigen.ParityAuto {
		br.Parity = eigen.Classify(br.Mid())
	}

	fLow, err := b.endpoint(ctx, low, br.Parity)
	if err != nil {
		return eigen.Estimate{}, err
	}
	fHigh, err := b.endpoint(ctx, high, br.Parity)
	if err != nil {
		return eigen.Estimate{}, err
	}

	switch {
	case fLow == 0:
		return eigen.Estimate{Energy: low, Low: low, High: low, State: eigen.Converged}, nil
	case fHigh == 0:
		return eigen.Estimate{Energy: high, Low: high, High: high, State: eigen.Converged}, nil
	case sameSign(fLow, fHigh):
		return eigen.Estimate{}, fmt.Errorf("%w: ψ(x_N) = %.3g at ε=%.6g and %.3g at ε=%.6g",
			eigen.ErrNoSignChange, fLow, low, fHigh, high)
	}

	est := eigen.Estimate{Low: low, High: high, State: eigen.Bracketing}
	for est.Iterations < b.maxIter && high-low >= b.tol {
		if err := ctx.Err(); err != nil {
			return eigen.Estimate{}, err
		}
		mid := (low + high) / 2
		fMid, err := b.endpoint(ctx, mid, br.Parity)
		if err != nil {
			return eigen.Estimate{}, err
		}
		est.Iterations++

		if fMid == 0 {
			low, high = mid, mid
			break
		}
		if sameSign(fMid, fHigh) {
			high, fHigh = mid, fMid
		} else {
			low = mid
		}
	}

	est.Low, est.High = low, high
	est.Energy = (low + high) / 2
	if high-low < b.tol {
		est.State = eigen.Converged
	} else {
		est.State = eigen.Exhausted
	}

	b.log.Debug("bisection finished",
		zap.Stringer("bracket", br),
		zap.Float64("energy", est.Energy),
		zap.Int("iterations", est.Iterations),
		zap.Stringer("state", est.State))
	return est, nil
}

// Residual is |ψ(x_N)| at energy for the bracket parity.
func (b *Bisector) Residual(ctx context.Context, energy float64, parity eigen.Parity) (float64, error) {
	v, err := b.endpoint(ctx, energy, parity)
	return math.Abs(v), err
}

func (b *Bisector) endpoint(ctx context.Context, energy float64, parity eigen.Parity) (float64, error) {
	return b.shooter.Endpoint(ctx, b.sys, b.grid, energy, parity)
}

func sameSign(a, b float64) bool {
	return math.Signbit(a) == math.Signbit(b)
}
