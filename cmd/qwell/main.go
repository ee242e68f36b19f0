package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/qwell/internal/logging"
)

// cli holds the flag values shared by all commands.
type cli struct {
	dataDir string
	verbose bool
	workers int
	log     *zap.Logger

	configFile string
	preset     string
	integrator string
	solver     string
	tolerance  float64
	iterations int
	margin     float64
	xMax       float64
	xStep      float64
	noSave     bool
	plot       bool

	energies []float64
	parities []string
	brackets []string
	z0s      []float64
	scanMin  float64
	scanMax  float64
	scanStep float64

	width  int
	height int

	sweepParams []string
	metric      string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{log: zap.NewNop()}
	return c.command(out)
}

func (c *cli) command(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qwell",
		Short:         "bound states of 1-D potential wells by shooting",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(c.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&c.dataDir, "data", ".qwell", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVar(&c.workers, "workers", 0, "parallel workers (0 = one per CPU)")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "shoot a list of trial energies",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runMode("solve"),
	}
	solveCmd.Flags().Float64SliceVar(&c.energies, "energies", nil, "trial energies")
	solveCmd.Flags().StringSliceVar(&c.parities, "parities", nil, "parity per energy (even, odd, auto)")

	bracketCmd := &cobra.Command{
		Use:   "bracket [model]",
		Short: "refine energy brackets by bisection",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runMode("bracket"),
	}
	bracketCmd.Flags().StringArrayVar(&c.brackets, "bracket", nil, "bracket as low:high[:parity], repeatable")

	finiteCmd := &cobra.Command{
		Use:   "finite",
		Short: "solve the finite well for each well strength z0",
		Args:  cobra.NoArgs,
		RunE:  c.runMode("finite"),
	}
	finiteCmd.Flags().Float64SliceVar(&c.z0s, "z0", nil, "well strengths")
	finiteCmd.Flags().StringVar(&c.solver, "solver", "", "root solver (brent, neldermead)")
	finiteCmd.Flags().Float64Var(&c.margin, "margin", 0, "bracket half-width around each root")

	scanCmd := &cobra.Command{
		Use:   "scan [model]",
		Short: "scan an energy range for sign changes and refine them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runMode("scan"),
	}
	scanCmd.Flags().Float64Var(&c.scanMin, "min", 0, "lowest energy")
	scanCmd.Flags().Float64Var(&c.scanMax, "max", 0, "highest energy")
	scanCmd.Flags().Float64Var(&c.scanStep, "step", 0, "energy step")
	scanCmd.Flags().StringSliceVar(&c.parities, "parities", nil, "parities to scan")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run from a config file or preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runMode(""),
	}
	runCmd.Flags().StringVar(&c.configFile, "config", "", "config file path (yaml)")

	for _, cmd := range []*cobra.Command{solveCmd, bracketCmd, finiteCmd, scanCmd, runCmd} {
		cmd.Flags().StringVar(&c.preset, "preset", "", "start from a preset")
		cmd.Flags().StringVar(&c.integrator, "integrator", "", "integrator (rk4, rk45)")
		cmd.Flags().Float64Var(&c.tolerance, "tol", 0, "bisection tolerance")
		cmd.Flags().IntVar(&c.iterations, "iterations", 0, "bisection iteration cap")
		cmd.Flags().Float64Var(&c.xMax, "xmax", 0, "half-domain end")
		cmd.Flags().Float64Var(&c.xStep, "xstep", 0, "grid step")
		cmd.Flags().BoolVar(&c.noSave, "no-save", false, "do not store the run")
		cmd.Flags().BoolVar(&c.plot, "plot", false, "print an ascii plot")
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep grid or search settings and rank them by a diagnostic",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.sweep,
	}
	sweepCmd.Flags().StringArrayVar(&c.sweepParams, "param", nil, "name=v1,v2,... to sweep, repeatable")
	sweepCmd.Flags().StringVar(&c.metric, "metric", "norm_error", "diagnostic to minimize")
	sweepCmd.Flags().StringVar(&c.preset, "preset", "", "start from a preset")
	sweepCmd.Flags().StringVar(&c.configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  c.listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot and summarize a run",
		Args:  cobra.ExactArgs(1),
		RunE:  c.showRun,
	}
	showCmd.Flags().IntVar(&c.width, "width", 72, "plot width")
	showCmd.Flags().IntVar(&c.height, "height", 16, "plot height")

	browseCmd := &cobra.Command{
		Use:   "browse [run_id]",
		Short: "step through the solutions of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  c.browseRun,
	}

	figureCmd := &cobra.Command{
		Use:   "figure [run_id] [out]",
		Short: "draw a run to a png, svg or pdf figure",
		Args:  cobra.ExactArgs(2),
		RunE:  c.figureRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  c.exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export mirrored solutions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  c.exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.listPresets,
	}

	rootCmd.AddCommand(solveCmd, bracketCmd, finiteCmd, scanCmd, runCmd, sweepCmd,
		listCmd, showCmd, browseCmd, figureCmd, exportJSONCmd, exportCSVCmd, presetsCmd)
	return rootCmd
}
