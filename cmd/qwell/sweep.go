package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/experiment"
	"github.com/san-kum/qwell/internal/optim"
)

func (c *cli) sweep(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(c.sweepParams) == 0 {
		return fmt.Errorf("%w: sweep needs at least one --param", eigen.ErrConfiguration)
	}
	model := ""
	if len(args) > 0 {
		model = args[0]
	}
	base, err := c.buildConfig(cmd, model, "")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(c.sweepParams))
	ranges := make([][]float64, 0, len(c.sweepParams))
	for _, spec := range c.sweepParams {
		name, vals, err := optim.ParseParam(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	gs, err := optim.NewGridSearch(names, ranges, c.log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "sweeping %s %s over %s...\n", base.Model, base.Mode, strings.Join(names, ", "))
	best, points, err := gs.Search(cmd.Context(), base, optim.WorstMetric(c.metric), experiment.WithLogger(c.log))
	if err != nil && len(points) == 0 {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSOLUTIONS\tFAILURES\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(c.metric))
	for _, p := range optim.Ranked(points) {
		vals := make([]string, len(names))
		for i, name := range names {
			vals[i] = fmt.Sprintf("%g", p.Params[name])
		}
		score := fmt.Sprintf("%.3e", p.Score)
		if p.Err != nil {
			score = "error: " + p.Err.Error()
		} else if math.IsInf(p.Score, 1) {
			score = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", strings.Join(vals, "\t"), p.Solutions, p.Failures, score)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(best.Params))
	for k := range best.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, best.Params[k])
	}
	fmt.Fprintf(out, "best: %s (%s %.3e)\n", strings.Join(parts, " "), c.metric, best.Score)
	return nil
}
