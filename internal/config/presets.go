package config

import "sort"

// Presets reproduce the standard runs for each model.
var Presets = map[string]map[string]*Config{
	"infinite": {
		"solve": {
			Model: "infinite", Mode: ModeSolve, Integrator: DefaultIntegrator,
			Grid:     DefaultGrid("infinite"),
			Energies: []float64{1, 4, 9, 16},
		},
		"bracket": {
			Model: "infinite", Mode: ModeBracket, Integrator: DefaultIntegrator,
			Grid:     DefaultGrid("infinite"),
			Brackets: []BracketConfig{{Low: 0.8, High: 1.1, Parity: "even"}},
			Search:   SearchConfig{Tolerance: 1e-6, Iterations: 25},
		},
		"ladder": {
			Model: "infinite", Mode: ModeBracket, Integrator: DefaultIntegrator,
			Grid: DefaultGrid("infinite"),
			Brackets: []BracketConfig{
				{Low: 0.8, High: 1.1}, {Low: 3.7, High: 4.3},
				{Low: 8.5, High: 9.5}, {Low: 15.5, High: 16.5},
			},
		},
	},
	"finite": {
		"z0": {
			Model: "finite", Mode: ModeFinite, Integrator: DefaultIntegrator,
			Grid:   DefaultGrid("finite"),
			Params: ParamsConfig{Wall: DefaultWall, Z0s: []float64{1, 5, 8, 14}},
			Search: SearchConfig{Margin: DefaultMargin, RootSolver: DefaultRootSolver},
		},
		"shallow": {
			Model: "finite", Mode: ModeFinite, Integrator: DefaultIntegrator,
			Grid:   DefaultGrid("finite"),
			Params: ParamsConfig{Wall: DefaultWall, Z0s: []float64{1, 2}},
			Search: SearchConfig{Margin: DefaultMargin, RootSolver: "neldermead"},
		},
		"scan": {
			Model: "finite", Mode: ModeScan, Integrator: DefaultIntegrator,
			Grid:   DefaultGrid("finite"),
			Params: ParamsConfig{Wall: DefaultWall, V0: 8},
			Scan:   ScanConfig{Min: 0.01, Max: 8, Step: 0.02},
		},
	},
	"harmonic": {
		"scan": {
			Model: "harmonic", Mode: ModeScan, Integrator: DefaultIntegrator,
			Grid:   DefaultGrid("harmonic"),
			Params: ParamsConfig{C: DefaultC},
			Scan:   ScanConfig{Min: 0, Max: 5, Step: 0.01},
			Search: SearchConfig{Tolerance: 1e-10, Iterations: 32},
		},
		"solve": {
			Model: "harmonic", Mode: ModeSolve, Integrator: DefaultIntegrator,
			Grid:     DefaultGrid("harmonic"),
			Params:   ParamsConfig{C: DefaultC},
			Energies: []float64{0.5, 1.5, 2.5, 3.5},
			Parities: []string{"even", "odd", "even", "odd"},
		},
	},
}

// GetPreset returns a copy of the named preset with unset fields filled from
// DefaultConfig, or nil when it does not exist.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return Merge(DefaultConfig(), p)
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns base with every non-zero field of over applied on top.
func Merge(base, over *Config) *Config {
	out := *base
	out.Energies = append([]float64(nil), base.Energies...)
	out.Parities = append([]string(nil), base.Parities...)
	out.Brackets = append([]BracketConfig(nil), base.Brackets...)
	out.Params.Z0s = append([]float64(nil), base.Params.Z0s...)
	out.Scan.Parities = append([]string(nil), base.Scan.Parities...)
	if over == nil {
		return &out
	}
	if over.Model != "" {
		out.Model = over.Model
		if over.Grid == (GridConfig{}) {
			out.Grid = DefaultGrid(over.Model)
		}
	}
	if over.Mode != "" {
		out.Mode = over.Mode
	}
	if over.Integrator != "" {
		out.Integrator = over.Integrator
	}
	if over.Grid != (GridConfig{}) {
		out.Grid = over.Grid
	}
	if over.Params.V0 != 0 {
		out.Params.V0 = over.Params.V0
	}
	if over.Params.Wall != 0 {
		out.Params.Wall = over.Params.Wall
	}
	if over.Params.C != 0 {
		out.Params.C = over.Params.C
	}
	if len(over.Params.Z0s) > 0 {
		out.Params.Z0s = append([]float64(nil), over.Params.Z0s...)
	}
	if len(over.Energies) > 0 {
		out.Energies = append([]float64(nil), over.Energies...)
	}
	if len(over.Parities) > 0 {
		out.Parities = append([]string(nil), over.Parities...)
	}
	if len(over.Brackets) > 0 {
		out.Brackets = append([]BracketConfig(nil), over.Brackets...)
	}
	if over.Scan.Step != 0 {
		out.Scan = over.Scan
		out.Scan.Parities = append([]string(nil), over.Scan.Parities...)
	}
	if over.Search.Tolerance != 0 {
		out.Search.Tolerance = over.Search.Tolerance
	}
	if over.Search.Iterations != 0 {
		out.Search.Iterations = over.Search.Iterations
	}
	if over.Search.Margin != 0 {
		out.Search.Margin = over.Search.Margin
	}
	if over.Search.RootSolver != "" {
		out.Search.RootSolver = over.Search.RootSolver
	}
	if over.Workers != 0 {
		out.Workers = over.Workers
	}
	if over.Substeps != 0 {
		out.Substeps = over.Substeps
	}
	return &out
}
