// Package optim sweeps run settings over a grid and ranks them by a
// solution diagnostic.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/san-kum/qwell/internal/config"
	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/experiment"
)

// Params names the config fields a sweep may vary.
var Params = []string{"x_max", "x_step", "tolerance", "iterations", "margin", "substeps", "v0", "wall", "c"}

// Point is one evaluated combination.
type Point struct {
	Params    map[string]float64
	Score     float64
	Solutions int
	Failures  int
	Err       error
}

// Score rates the solutions of one run; lower is better.
type Score func(sols []*eigen.Solution, failures []error) float64

// WorstMetric scores a run by the largest value of the named metric over its
// solutions. Runs with failures or no solutions score +Inf.
func WorstMetric(name string) Score {
	return func(sols []*eigen.Solution, failures []error) float64 {
		if len(sols) == 0 || len(failures) > 0 {
			return math.Inf(1)
		}
		worst := math.Inf(-1)
		for _, sol := range sols {
			v, ok := sol.Metrics[name]
			if !ok || math.IsNaN(v) {
				return math.Inf(1)
			}
			worst = math.Max(worst, v)
		}
		return worst
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	log        *zap.Logger
}

func NewGridSearch(params []string, ranges [][]float64, log *zap.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d params for %d ranges", eigen.ErrConfiguration, len(params), len(ranges))
	}
	for i, name := range params {
		if !knownParam(name) {
			return nil, fmt.Errorf("%w: unknown sweep param %q", eigen.ErrConfiguration, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", eigen.ErrConfiguration, name)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GridSearch{paramNames: params, ranges: ranges, log: log}, nil
}

// Search runs base once per combination of the swept values and returns the
// best point together with every evaluated point in sweep order. Points that
// fail to set up or run keep their error and score +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, score Score, opts ...experiment.Option) (Point, []Point, error) {
	var points []Point
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, base, score, opts, &points); err != nil {
		return Point{}, points, err
	}

	best := Point{Score: math.Inf(1)}
	for _, p := range points {
		if p.Err == nil && p.Score < best.Score {
			best = p
		}
	}
	if best.Params == nil {
		return best, points, fmt.Errorf("%w: no sweep point produced solutions", eigen.ErrNotConverged)
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	score Score,
	opts []experiment.Option,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		*points = append(*points, g.evaluate(ctx, current, base, score, opts))
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, base, score, opts, points); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, base *config.Config, score Score, opts []experiment.Option) Point {
	p := Point{Params: params, Score: math.Inf(1)}
	cfg := config.Merge(base, nil)
	for name, v := range params {
		Set(cfg, name, v)
	}

	exp := experiment.New(cfg, opts...)
	if err := exp.Setup(); err != nil {
		p.Err = err
		return p
	}
	if _, err := exp.Run(ctx); err != nil {
		p.Err = err
		return p
	}
	sols, failures := exp.Solutions(), exp.Failures()
	p.Solutions, p.Failures = len(sols), len(failures)
	p.Score = score(sols, failures)
	g.log.Debug("sweep point", zap.Any("params", params), zap.Float64("score", p.Score))
	return p
}

// Set writes one named value into cfg. Unknown names are ignored.
func Set(cfg *config.Config, name string, v float64) {
	switch name {
	case "x_max":
		cfg.Grid.XMax = v
	case "x_step":
		cfg.Grid.XStep = v
	case "tolerance":
		cfg.Search.Tolerance = v
	case "iterations":
		cfg.Search.Iterations = int(v)
	case "margin":
		cfg.Search.Margin = v
	case "substeps":
		cfg.Substeps = int(v)
	case "v0":
		cfg.Params.V0 = v
	case "wall":
		cfg.Params.Wall = v
	case "c":
		cfg.Params.C = v
	}
}

// ParseParam reads name=v1,v2,... into a name and its values.
func ParseParam(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("%w: sweep param %q is not name=v1,v2", eigen.ErrConfiguration, spec)
	}
	if !knownParam(name) {
		return "", nil, fmt.Errorf("%w: unknown sweep param %q (known: %s)", eigen.ErrConfiguration, name, strings.Join(Params, ", "))
	}
	var vals []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", eigen.ErrConfiguration, name, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// Ranked returns the points ordered by score, failed points last.
func Ranked(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

func knownParam(name string) bool {
	for _, p := range Params {
		if p == name {
			return true
		}
	}
	return false
}
