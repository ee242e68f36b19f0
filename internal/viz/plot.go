package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/qwell/internal/eigen"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Orange,
	asciigraph.White,
}

type plotConfig struct {
	width   int
	height  int
	caption string
	color   bool
}

type PlotOption func(*plotConfig)

func WithSize(width, height int) PlotOption {
	return func(c *plotConfig) {
		c.width, c.height = width, height
	}
}

func WithCaption(caption string) PlotOption {
	return func(c *plotConfig) { c.caption = caption }
}

// WithoutColor disables ANSI series colors and legends.
func WithoutColor() PlotOption {
	return func(c *plotConfig) { c.color = false }
}

// PlotSolutions draws the mirrored normalized solutions over the full domain
// as one asciigraph chart. Series are interpolated to the plot width.
func PlotSolutions(g *eigen.Grid, sols []*eigen.Solution, opts ...PlotOption) (string, error) {
	cfg := plotConfig{width: 72, height: 16, color: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if g == nil {
		return "", fmt.Errorf("%w: nil grid", eigen.ErrConfiguration)
	}
	if len(sols) == 0 {
		return "", fmt.Errorf("%w: nothing to plot", eigen.ErrEmptyResult)
	}

	series := make([][]float64, 0, len(sols))
	legends := make([]string, 0, len(sols))
	for _, sol := range sols {
		_, ys := sol.Mirror(g)
		if len(ys) == 0 {
			continue
		}
		series = append(series, ys)
		legends = append(legends, sol.Label)
	}
	if len(series) == 0 {
		return "", fmt.Errorf("%w: solutions carry no samples", eigen.ErrEmptyResult)
	}

	gopts := []asciigraph.Option{
		asciigraph.Height(cfg.height),
		asciigraph.Width(cfg.width),
		asciigraph.Precision(2),
	}
	if cfg.caption != "" {
		gopts = append(gopts, asciigraph.Caption(cfg.caption))
	}
	if cfg.color {
		colors := make([]asciigraph.AnsiColor, len(series))
		for i := range colors {
			colors[i] = seriesColors[i%len(seriesColors)]
		}
		gopts = append(gopts, asciigraph.SeriesColors(colors...), asciigraph.SeriesLegends(legends...))
	}
	return asciigraph.PlotMany(series, gopts...), nil
}
