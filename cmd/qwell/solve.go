package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/qwell/internal/config"
	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/experiment"
	"github.com/san-kum/qwell/internal/search"
	"github.com/san-kum/qwell/internal/storage"
	"github.com/san-kum/qwell/internal/viz"
)

// runMode builds the config for mode (or keeps the config's own mode when
// mode is empty), runs the experiment and stores the solutions.
func (c *cli) runMode(mode string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		model := ""
		if len(args) > 0 {
			model = args[0]
		}
		cfg, err := c.buildConfig(cmd, model, mode)
		if err != nil {
			return err
		}
		return c.execute(cmd.Context(), cmd.OutOrStdout(), cfg)
	}
}

// buildConfig layers defaults, the preset, the config file and finally the
// flags that were set on the command line.
func (c *cli) buildConfig(cmd *cobra.Command, model, mode string) (*config.Config, error) {
	if mode == config.ModeFinite {
		model = "finite"
	}
	cfg := config.DefaultConfig()
	if model != "" {
		cfg = config.Merge(cfg, &config.Config{Model: model})
	}

	if c.preset != "" {
		p := config.GetPreset(cfg.Model, c.preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %s (available: %v)", eigen.ErrConfiguration, c.preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if c.configFile != "" {
		over, err := config.Read(c.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Merge(cfg, over)
	}

	if model != "" && model != cfg.Model {
		cfg = config.Merge(cfg, &config.Config{Model: model})
	}
	if mode != "" {
		cfg.Mode = mode
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = c.integrator
	}
	if flags.Changed("tol") {
		cfg.Search.Tolerance = c.tolerance
	}
	if flags.Changed("iterations") {
		cfg.Search.Iterations = c.iterations
	}
	if flags.Changed("xmax") {
		cfg.Grid.XMax = c.xMax
	}
	if flags.Changed("xstep") {
		cfg.Grid.XStep = c.xStep
	}
	if c.workers > 0 {
		cfg.Workers = c.workers
	}

	switch cfg.Mode {
	case config.ModeSolve:
		if flags.Changed("energies") {
			cfg.Energies = c.energies
			cfg.Parities = nil
		}
		if flags.Changed("parities") {
			cfg.Parities = c.parities
		}
	case config.ModeBracket:
		if flags.Changed("bracket") {
			brackets, err := parseBrackets(c.brackets)
			if err != nil {
				return nil, err
			}
			cfg.Brackets = brackets
		}
	case config.ModeFinite:
		if flags.Changed("z0") {
			cfg.Params.Z0s = c.z0s
		}
		if flags.Changed("solver") {
			cfg.Search.RootSolver = c.solver
		}
		if flags.Changed("margin") {
			cfg.Search.Margin = c.margin
		}
	case config.ModeScan:
		if flags.Changed("min") {
			cfg.Scan.Min = c.scanMin
		}
		if flags.Changed("max") {
			cfg.Scan.Max = c.scanMax
		}
		if flags.Changed("step") {
			cfg.Scan.Step = c.scanStep
		}
		if flags.Changed("parities") {
			cfg.Scan.Parities = c.parities
		}
	}
	return cfg, cfg.Validate()
}

// parseBrackets reads low:high[:parity] specs.
func parseBrackets(specs []string) ([]config.BracketConfig, error) {
	out := make([]config.BracketConfig, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w: bracket %q is not low:high[:parity]", eigen.ErrConfiguration, spec)
		}
		low, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bracket %q: %v", eigen.ErrConfiguration, spec, err)
		}
		high, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bracket %q: %v", eigen.ErrConfiguration, spec, err)
		}
		b := config.BracketConfig{Low: low, High: high}
		if len(parts) == 3 {
			b.Parity = parts[2]
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *cli) execute(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	exp := experiment.New(cfg, experiment.WithLogger(c.log))
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Fprintf(out, "running %s %s...\n", cfg.Model, cfg.Mode)
	start := time.Now()
	if _, err := exp.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, rs := range exp.Roots() {
		printRoots(out, rs)
	}

	sols := exp.Solutions()
	failures := exp.Failures()
	for _, err := range failures {
		c.log.Warn("candidate failed", zap.Error(err))
		fmt.Fprintf(out, "failed: %v\n", err)
	}
	fmt.Fprintf(out, "completed in %v: %d solutions, %d failures\n", elapsed.Round(time.Millisecond), len(sols), len(failures))
	if len(sols) == 0 {
		return nil
	}

	fmt.Fprintln(out, viz.Summary(sols))
	if c.plot {
		graph, err := viz.PlotSolutions(exp.Grid(), sols, viz.WithCaption(fmt.Sprintf("%s well", cfg.Model)))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, graph)
	}

	if c.noSave {
		return nil
	}
	st := storage.New(c.dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runMetadata(exp, failures, time.Now()), exp.Grid(), sols)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func runMetadata(exp *experiment.Experiment, failures []error, now time.Time) storage.RunMetadata {
	cfg := exp.Config()
	meta := storage.RunMetadata{
		ID:         storage.NewRunID(cfg.Model, now),
		Model:      cfg.Model,
		Mode:       string(exp.Mode()),
		Integrator: cfg.Integrator,
		Timestamp:  now,
		Params:     cfg.ModelParams(),
	}
	if exp.Mode() == experiment.ModeFinite {
		meta.RootSolver = cfg.Search.RootSolver
		meta.Z0s = append([]float64(nil), cfg.Params.Z0s...)
		meta.Params["wall"] = config.DefaultWall
	}
	for _, err := range failures {
		meta.Failures = append(meta.Failures, err.Error())
	}
	return meta
}

func printRoots(out io.Writer, rs search.Roots) {
	fmt.Fprintf(out, "z0 = %g: %d roots\n", rs.Z0, rs.Len())
	for _, p := range []eigen.Parity{eigen.Even, eigen.Odd} {
		zs := rs.Even
		if p == eigen.Odd {
			zs = rs.Odd
		}
		for i, e := range rs.Energies(p) {
			fmt.Fprintf(out, "  %-4s z = %.6f  ε = %.6f\n", p, zs[i], e)
		}
	}
}
