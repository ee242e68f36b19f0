package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/qwell/internal/config"
	"github.com/san-kum/qwell/internal/export"
	"github.com/san-kum/qwell/internal/storage"
	"github.com/san-kum/qwell/internal/viz"
)

func (c *cli) listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	runs, err := storage.New(c.dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMODE\tTIME\tINTEG\tSOLUTIONS\tFAILURES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			len(run.Solutions),
			len(run.Failures),
		)
	}
	return w.Flush()
}

func (c *cli) loadRun(runID string) (*storage.Run, error) {
	return storage.New(c.dataDir).LoadSolutions(runID)
}

func (c *cli) showRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	run, err := c.loadRun(args[0])
	if err != nil {
		return err
	}
	if len(run.Solutions) == 0 {
		return fmt.Errorf("run %s: no data to plot", run.Meta.ID)
	}

	fmt.Fprintf(out, "run: %s\n", run.Meta.ID)
	fmt.Fprintf(out, "model: %s (%s, %s)\n", run.Meta.Model, run.Meta.Mode, run.Meta.Integrator)
	fmt.Fprintf(out, "grid: [%g, %g] step %g, %d points\n\n", run.Meta.Grid.XMin, run.Meta.Grid.XMax, run.Meta.Grid.XStep, run.Meta.Grid.Points)

	graph, err := viz.PlotSolutions(run.Grid, run.Solutions,
		viz.WithSize(c.width, c.height),
		viz.WithCaption(fmt.Sprintf("%s well, mirrored", run.Meta.Model)))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.Summary(run.Solutions))
	for _, f := range run.Meta.Failures {
		fmt.Fprintf(out, "failed: %s\n", f)
	}
	return nil
}

func (c *cli) browseRun(cmd *cobra.Command, args []string) error {
	run, err := c.loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.RunBrowser(run)
}

func (c *cli) figureRun(cmd *cobra.Command, args []string) error {
	run, err := c.loadRun(args[0])
	if err != nil {
		return err
	}
	if err := export.SaveFigure(args[1], run); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
	return nil
}

func (c *cli) exportJSON(cmd *cobra.Command, args []string) error {
	run, err := c.loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), run)
}

func (c *cli) exportCSV(cmd *cobra.Command, args []string) error {
	run, err := c.loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(cmd.OutOrStdout(), run)
}

func (c *cli) listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	models := config.Models
	if len(args) > 0 {
		models = args[:1]
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", model)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", model)
		for _, p := range presets {
			cfg := config.GetPreset(model, p)
			fmt.Fprintf(out, "  %-8s %s\n", p, cfg.Mode)
		}
	}
	return nil
}
