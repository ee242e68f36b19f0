package experiment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qwell/internal/config"
	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
)

func setup(t *testing.T, cfg *config.Config) *Experiment {
	t.Helper()
	exp := New(cfg)
	require.NoError(t, exp.Setup())
	return exp
}

func TestSolvePreset(t *testing.T) {
	exp := setup(t, config.GetPreset("infinite", "solve"))

	outcomes, err := exp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	sols := exp.Solutions()
	require.Len(t, sols, 4)
	wantParity := []eigen.Parity{eigen.Even, eigen.Odd, eigen.Even, eigen.Odd}
	for i, sol := range sols {
		assert.Equal(t, wantParity[i], sol.Parity)
		assert.Nil(t, sol.Estimate)
		assert.InDelta(t, float64(i), sol.Metrics["nodes"], 0)
	}
	assert.Equal(t, ModeSolve, exp.Mode())
	assert.Empty(t, exp.Failures())
}

func TestBracketPreset(t *testing.T) {
	exp := setup(t, config.GetPreset("infinite", "bracket"))

	_, err := exp.Run(context.Background())
	require.NoError(t, err)

	sols := exp.Solutions()
	require.Len(t, sols, 1)
	assert.InDelta(t, 1.0, sols[0].Energy, 1e-5)
	require.NotNil(t, sols[0].Estimate)
	assert.Equal(t, eigen.Converged, sols[0].Estimate.State)
}

func TestModelTuningFromConfig(t *testing.T) {
	exp := setup(t, config.GetPreset("infinite", "bracket"))
	tuned, ok := exp.System().(eigen.Tuned)
	require.True(t, ok)
	assert.Equal(t, 25, tuned.IterationCap())
	assert.Equal(t, 1e-6, tuned.Tolerance())
}

func TestFiniteMode(t *testing.T) {
	cfg := config.GetPreset("finite", "z0")
	cfg.Params.Z0s = []float64{1, 5}
	cfg.Workers = 2
	exp := setup(t, cfg)

	outcomes, err := exp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
	}

	roots := exp.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, 1, roots[0].Len())
	assert.Equal(t, 4, roots[1].Len())

	sols := exp.Solutions()
	require.Len(t, sols, 5)
	assert.True(t, strings.HasPrefix(sols[0].Label, "z0 = 1,"))
	assert.InDelta(t, search.ZToEnergy(roots[0].Even[0]), sols[0].Energy, config.DefaultMargin)
	for _, sol := range sols[1:] {
		assert.True(t, strings.HasPrefix(sol.Label, "z0 = 5,"), sol.Label)
	}
	assert.InDelta(t, search.ZToEnergy(roots[1].Even[0]), sols[1].Energy, 1e-4)
}

func TestScanMode(t *testing.T) {
	cfg := config.GetPreset("harmonic", "scan")
	cfg.Grid = config.GridConfig{XMin: 0, XMax: 7, XStep: 0.02}
	cfg.Scan = config.ScanConfig{Min: 0.03, Max: 2.2, Step: 0.05}
	exp := setup(t, cfg)

	_, err := exp.Run(context.Background())
	require.NoError(t, err)

	sols := exp.Solutions()
	require.Len(t, sols, 2)
	osc := potentials.NewHarmonicOscillator()
	assert.InDelta(t, osc.Level(0), sols[0].Energy, 1e-4)
	assert.Equal(t, eigen.Even, sols[0].Parity)
	assert.InDelta(t, osc.Level(1), sols[1].Energy, 1e-4)
	assert.Equal(t, eigen.Odd, sols[1].Parity)
}

func TestManualLifecycle(t *testing.T) {
	exp := New(nil)
	_, err := exp.Solve(context.Background(), []eigen.Candidate{{Value: 1}})
	assert.ErrorIs(t, err, eigen.ErrConfiguration)

	require.NoError(t, exp.SetGrid(0, 0.5, 0.005))
	_, err = exp.Solve(context.Background(), []eigen.Candidate{{Value: 1}})
	assert.ErrorIs(t, err, eigen.ErrConfiguration)

	exp.SetModel(potentials.NewInfiniteWell())
	outcomes, err := exp.Bracket(context.Background(), []eigen.Bracket{{Low: 3.7, High: 4.3}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.InDelta(t, 4.0, outcomes[0].Solution.Energy, 1e-5)

	assert.ErrorIs(t, exp.SetGrid(1, 0, 0.1), eigen.ErrConfiguration)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "euler"
	assert.ErrorIs(t, New(cfg).Setup(), eigen.ErrConfiguration)

	cfg = config.DefaultConfig()
	cfg.Mode = "nope"
	assert.ErrorIs(t, New(cfg).Setup(), eigen.ErrConfiguration)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"finite", "harmonic", "infinite"}, r.ListModels())
	assert.Equal(t, []string{"rk4", "rk45"}, r.ListIntegrators())
	assert.Equal(t, []string{"brent", "neldermead"}, r.ListRootSolvers())

	_, err := r.GetModel("pendulum")
	assert.ErrorIs(t, err, eigen.ErrConfiguration)
	_, err = r.GetIntegrator("verlet")
	assert.ErrorIs(t, err, eigen.ErrConfiguration)
	_, err = r.GetRootSolver("newton")
	assert.ErrorIs(t, err, eigen.ErrConfiguration)

	s, err := r.GetRootSolver("")
	require.NoError(t, err)
	assert.Equal(t, "brent", s.Name())
}
