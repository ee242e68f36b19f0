package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/qwell/internal/eigen"
)

// RootSolver finds a zero of f inside [a, b].
type RootSolver interface {
	Name() string
	Root(ctx context.Context, f func(float64) float64, a, b float64) (float64, error)
}

// Brent is the bracketed inverse-quadratic/bisection method. It requires
// f(a) and f(b) to differ in sign.
type Brent struct {
	Tol     float64
	MaxIter int
}

func NewBrent() *Brent {
	return &Brent{Tol: 1e-12, MaxIter: 100}
}

func (*Brent) Name() string { return "brent" }

func (s *Brent) Root(ctx context.Context, f func(float64) float64, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", eigen.ErrNoSignChange, a, fa, b, fb)
	}

	c, fc := a, fa
	d := b - a
	e := d
	for i := 0; i < s.MaxIter; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if math.Signbit(fb) == math.Signbit(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*eps*math.Abs(b) + 0.5*s.Tol
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			r := fb / fa
			if a == c {
				// secant
				p = 2 * m * r
				q = 1 - r
			} else {
				q = fa / fc
				t := fb / fc
				p = r * (2*m*q*(q-t) - (b-a)*(t-1))
				q = (q - 1) * (t - 1) * (r - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = d
			}
		} else {
			d = m
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, m)
		}
		fb = f(b)
	}
	return b, fmt.Errorf("%w: brent after %d iterations", eigen.ErrNotConverged, s.MaxIter)
}

const eps = 2.220446049250313e-16

// NelderMead minimises f² over [a, b] with the gonum simplex method. Points
// outside the interval are clamped and penalised. The result is accepted only
// when |f| falls below Tol.
type NelderMead struct {
	Tol             float64
	FuncEvaluations int
	Runtime         time.Duration
}

func NewNelderMead() *NelderMead {
	return &NelderMead{Tol: 1e-8, FuncEvaluations: 2000, Runtime: 2 * time.Second}
}

func (*NelderMead) Name() string { return "neldermead" }

func (s *NelderMead) Root(ctx context.Context, f func(float64) float64, a, b float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	width := b - a
	obj := func(x []float64) float64 {
		z := x[0]
		penalty := 0.0
		if z < a {
			penalty, z = a-z, a
		} else if z > b {
			penalty, z = z-b, b
		}
		v := f(z)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.MaxFloat64 / 4
		}
		return v*v + 1e6*penalty*penalty
	}

	settings := &optimize.Settings{
		FuncEvaluations: s.FuncEvaluations,
		Runtime:         s.Runtime,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.Tol * s.Tol,
			Iterations: 200,
		},
	}
	method := &optimize.NelderMead{SimplexSize: width / 4}

	res, err := optimize.Minimize(optimize.Problem{Func: obj}, []float64{a + width/2}, settings, method)
	if res == nil {
		return 0, fmt.Errorf("%w: neldermead: %v", eigen.ErrNotConverged, err)
	}

	z := math.Min(math.Max(res.X[0], a), b)
	if r := math.Abs(f(z)); !(r < s.Tol) {
		return z, fmt.Errorf("%w: neldermead residual %.3g (%s)", eigen.ErrNotConverged, r, res.Status)
	}
	return z, nil
}
