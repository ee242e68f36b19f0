package eigen

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is an evenly spaced set of positions over [XMin, XMax]. It is built
// once per run and never modified.
type Grid struct {
	xMin, xMax float64
	step       float64
	points     []float64
}

// NewGrid splits [xMin, xMax] into round((xMax-xMin)/xStep) intervals. The
// effective step is (xMax-xMin)/N so both bounds are grid points.
func NewGrid(xMin, xMax, xStep float64) (*Grid, error) {
	for _, v := range []float64{xMin, xMax, xStep} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite grid bound", ErrConfiguration)
		}
	}
	if xMax <= xMin {
		return nil, fmt.Errorf("%w: xMax (%g) must exceed xMin (%g)", ErrConfiguration, xMax, xMin)
	}
	if xStep <= 0 || xStep > xMax-xMin {
		return nil, fmt.Errorf("%w: step %g outside (0, %g]", ErrConfiguration, xStep, xMax-xMin)
	}

	n := int(math.Round((xMax - xMin) / xStep))
	if n < 1 {
		n = 1
	}
	points := make([]float64, n+1)
	floats.Span(points, xMin, xMax)

	return &Grid{
		xMin:   xMin,
		xMax:   xMax,
		step:   (xMax - xMin) / float64(n),
		points: points,
	}, nil
}

func (g *Grid) Len() int         { return len(g.points) }
func (g *Grid) Step() float64    { return g.step }
func (g *Grid) XMin() float64    { return g.xMin }
func (g *Grid) XMax() float64    { return g.xMax }
func (g *Grid) At(i int) float64 { return g.points[i] }

// Points returns a copy of the grid positions.
func (g *Grid) Points() []float64 {
	p := make([]float64, len(g.points))
	copy(p, g.points)
	return p
}

// Mirrored returns the positions reflected about x = 0 and joined with the
// original ones: -x_N … -x_1, x_0 … x_N. x_0 is expected to be the symmetry
// point.
func (g *Grid) Mirrored() []float64 {
	n := len(g.points)
	out := make([]float64, 0, 2*n-1)
	for i := n - 1; i > 0; i-- {
		out = append(out, -g.points[i])
	}
	return append(out, g.points...)
}
