package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/qwell/internal/eigen"
)

const (
	DefaultMargin      = 1e-2
	DefaultDedupe      = 1e-4
	branchEdgeDistance = 1e-12
)

// Roots holds the accepted solutions z of the finite-well equations, each
// slice ascending.
type Roots struct {
	Z0   float64
	Even []float64
	Odd  []float64
}

func (r Roots) Len() int { return len(r.Even) + len(r.Odd) }

// Energies converts the roots of one parity to dimensionless energies.
func (r Roots) Energies(p eigen.Parity) []float64 {
	zs := r.Even
	if p == eigen.Odd {
		zs = r.Odd
	}
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = ZToEnergy(z)
	}
	return out
}

type RootOptions struct {
	Solver  RootSolver
	Dedupe  float64
	Workers int
	Logger  *zap.Logger
}

func (o RootOptions) withDefaults() RootOptions {
	if o.Solver == nil {
		o.Solver = NewBrent()
	}
	if o.Dedupe <= 0 {
		o.Dedupe = DefaultDedupe
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// EvenResidual is z·tan z - √(z0²-z²).
func EvenResidual(z0 float64) func(float64) float64 {
	return func(z float64) float64 {
		return z*math.Tan(z) - math.Sqrt(z0*z0-z*z)
	}
}

// OddResidual is z/tan z + √(z0²-z²), zero where √(z0²-z²) = -z·cot z.
func OddResidual(z0 float64) func(float64) float64 {
	return func(z float64) float64 {
		return z/math.Tan(z) + math.Sqrt(z0*z0-z*z)
	}
}

type branch struct {
	parity eigen.Parity
	k      int
	lo, hi float64
}

// branches lists the half-periods of tan on which each equation has exactly
// one root: ((k-1)π, (2k-1)π/2) for even and ((2k-1)π/2, kπ) for odd, clipped
// at z0.
func branches(z0 float64) []branch {
	var out []branch
	for k := 1; ; k++ {
		evenLo := float64(k-1) * math.Pi
		if evenLo >= z0 {
			break
		}
		evenHi := float64(2*k-1) * math.Pi / 2
		out = append(out, clip(branch{eigen.Even, k, evenLo, evenHi}, z0))

		oddHi := float64(k) * math.Pi
		if evenHi >= z0 {
			break
		}
		out = append(out, clip(branch{eigen.Odd, k, evenHi, oddHi}, z0))
	}
	return out
}

func clip(b branch, z0 float64) branch {
	if b.hi >= z0 {
		b.hi = z0
	} else {
		b.hi -= branchEdgeDistance
	}
	if b.parity == eigen.Odd || b.k > 1 {
		b.lo += branchEdgeDistance
	}
	return b
}

// FiniteWellRoots solves the even and odd finite-well equations for z0.
// Branch failures are logged and dropped; only a bad z0 or a cancelled
// context is returned as an error.
func FiniteWellRoots(ctx context.Context, z0 float64, opts RootOptions) (Roots, error) {
	if math.IsNaN(z0) || math.IsInf(z0, 0) || z0 <= 0 {
		return Roots{}, fmt.Errorf("%w: z0 must be positive, got %g", eigen.ErrConfiguration, z0)
	}
	opts = opts.withDefaults()

	bs := branches(z0)
	found := make([]float64, len(bs))
	ok := make([]bool, len(bs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, b := range bs {
		g.Go(func() error {
			f := EvenResidual(z0)
			if b.parity == eigen.Odd {
				f = OddResidual(z0)
			}
			z, err := opts.Solver.Root(gctx, f, b.lo, b.hi)
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				opts.Logger.Debug("branch rejected",
					zap.Stringer("parity", b.parity), zap.Int("branch", b.k), zap.Error(err))
				return nil
			case !(z > 0 && z < z0):
				opts.Logger.Debug("root outside (0, z0)",
					zap.Stringer("parity", b.parity), zap.Float64("z", z))
				return nil
			}
			found[i], ok[i] = z, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Roots{}, err
	}

	roots := Roots{Z0: z0}
	for i, b := range bs {
		if !ok[i] {
			continue
		}
		if b.parity == eigen.Even {
			roots.Even = append(roots.Even, found[i])
		} else {
			roots.Odd = append(roots.Odd, found[i])
		}
	}
	roots.Even = dedupe(roots.Even, opts.Dedupe)
	roots.Odd = dedupe(roots.Odd, opts.Dedupe)
	return roots, nil
}

func dedupe(zs []float64, tol float64) []float64 {
	if len(zs) == 0 {
		return nil
	}
	sort.Float64s(zs)
	out := zs[:1]
	for _, z := range zs[1:] {
		if z-out[len(out)-1] > tol {
			out = append(out, z)
		}
	}
	return out
}

// ZToEnergy converts a finite-well root to ε = (2z/π)².
func ZToEnergy(z float64) float64 {
	e := 2 * z / math.Pi
	return e * e
}

// Brackets wraps the energy of every root of the given parity in
// [ε-margin, ε+margin]. The low edge never drops below zero.
func Brackets(r Roots, parity eigen.Parity, margin float64) []eigen.Bracket {
	if margin <= 0 {
		margin = DefaultMargin
	}
	var out []eigen.Bracket
	for _, e := range r.Energies(parity) {
		out = append(out, eigen.Bracket{
			Low:    math.Max(e-margin, 0),
			High:   e + margin,
			Parity: parity,
		})
	}
	return out
}

// AllBrackets returns the even brackets followed by the odd ones.
func AllBrackets(r Roots, margin float64) []eigen.Bracket {
	return append(Brackets(r, eigen.Even, margin), Brackets(r, eigen.Odd, margin)...)
}
