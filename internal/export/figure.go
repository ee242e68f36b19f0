// Package export draws publication figures of eigenstates with gonum/plot.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/storage"
)

const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
)

var formats = map[string]bool{"png": true, "svg": true, "pdf": true, "eps": true, "jpg": true, "jpeg": true}

var wallColor = color.Gray{Y: 120}

// Figure describes one chart of mirrored solutions.
type Figure struct {
	Title  string
	Wall   float64
	Width  vg.Length
	Height vg.Length
}

// Plot builds the chart: one line per solution over the full domain, plus
// dashed vertical lines at ±Wall when Wall > 0.
func (f Figure) Plot(g *eigen.Grid, sols []*eigen.Solution) (*plot.Plot, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", eigen.ErrConfiguration)
	}
	if len(sols) == 0 {
		return nil, fmt.Errorf("%w: nothing to draw", eigen.ErrEmptyResult)
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "ψ(x)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	lo, hi := 0.0, 0.0
	for i, sol := range sols {
		xs, ys := sol.Mirror(g)
		if len(ys) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(ys))
		for j := range ys {
			pts[j].X, pts[j].Y = xs[j], ys[j]
			lo, hi = math.Min(lo, ys[j]), math.Max(hi, ys[j])
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("solution %d: %w", i, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(sol.Label, line)
	}

	if f.Wall > 0 {
		for _, x := range []float64{-f.Wall, f.Wall} {
			wall, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
			if err != nil {
				return nil, err
			}
			wall.Color = wallColor
			wall.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(wall)
		}
	}
	p.X.Min, p.X.Max = -g.XMax(), g.XMax()
	return p, nil
}

// WriteTo renders the chart in the given format (png, svg, pdf, eps, jpg).
func (f Figure) WriteTo(w io.Writer, format string, g *eigen.Grid, sols []*eigen.Solution) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !formats[format] {
		return fmt.Errorf("%w: unsupported figure format %q", eigen.ErrConfiguration, format)
	}
	p, err := f.Plot(g, sols)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(f.width(), f.height(), format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes the chart to path with the format taken from its extension.
func (f Figure) Save(path string, g *eigen.Grid, sols []*eigen.Solution) (err error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("%w: figure path %q has no extension", eigen.ErrConfiguration, path)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return f.WriteTo(file, ext, g, sols)
}

// SaveFigure draws a stored run to path, with walls taken from its metadata.
func SaveFigure(path string, run *storage.Run) error {
	if run == nil {
		return fmt.Errorf("%w: nil run", eigen.ErrConfiguration)
	}
	f := Figure{
		Title: fmt.Sprintf("%s well (%s)", run.Meta.Model, run.Meta.ID),
		Wall:  run.Meta.Wall(),
	}
	return f.Save(path, run.Grid, run.Solutions)
}

func (f Figure) width() vg.Length {
	if f.Width > 0 {
		return f.Width
	}
	return DefaultWidth
}

func (f Figure) height() vg.Length {
	if f.Height > 0 {
		return f.Height
	}
	return DefaultHeight
}
