package config

import (
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qwell/internal/eigen"
)

const (
	ModeSolve   = "solve"
	ModeBracket = "bracket"
	ModeScan    = "scan"
	ModeFinite  = "finite"

	DefaultIntegrator = "rk45"
	DefaultRootSolver = "brent"
	DefaultTolerance  = 1e-6
	DefaultIterations = 20
	DefaultMargin     = 1e-2
	DefaultSubsteps   = 4
	DefaultWall       = 0.5
	DefaultC          = 0.25
)

var Models = []string{"infinite", "finite", "harmonic"}

type Config struct {
	Model      string          `yaml:"model"`
	Mode       string          `yaml:"mode"`
	Integrator string          `yaml:"integrator"`
	Grid       GridConfig      `yaml:"grid"`
	Params     ParamsConfig    `yaml:"params"`
	Energies   []float64       `yaml:"energies,omitempty"`
	Parities   []string        `yaml:"parities,omitempty"`
	Brackets   []BracketConfig `yaml:"brackets,omitempty"`
	Scan       ScanConfig      `yaml:"scan"`
	Search     SearchConfig    `yaml:"search"`
	Workers    int             `yaml:"workers"`
	Substeps   int             `yaml:"substeps"`
}

type GridConfig struct {
	XMin  float64 `yaml:"x_min"`
	XMax  float64 `yaml:"x_max"`
	XStep float64 `yaml:"x_step"`
}

// ParamsConfig holds the model constants. Zero values fall back to the model
// defaults; Z0s drives the finite mode.
type ParamsConfig struct {
	V0   float64   `yaml:"v0,omitempty"`
	Wall float64   `yaml:"wall,omitempty"`
	C    float64   `yaml:"c,omitempty"`
	Z0s  []float64 `yaml:"z0s,omitempty"`
}

type BracketConfig struct {
	Low    float64 `yaml:"low"`
	High   float64 `yaml:"high"`
	Parity string  `yaml:"parity,omitempty"`
}

type ScanConfig struct {
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
	Step     float64  `yaml:"step"`
	Parities []string `yaml:"parities,omitempty"`
}

type SearchConfig struct {
	Tolerance  float64 `yaml:"tolerance"`
	Iterations int     `yaml:"iterations"`
	Margin     float64 `yaml:"margin"`
	RootSolver string  `yaml:"root_solver"`
}

// DefaultGrid returns the half-domain used for each model. The finite well
// extends four wall widths past the wall so that states near the top of the
// well have decayed before the hard boundary.
func DefaultGrid(model string) GridConfig {
	switch model {
	case "finite":
		return GridConfig{XMin: 0, XMax: 2.5, XStep: 0.005}
	case "harmonic":
		return GridConfig{XMin: 0, XMax: 7, XStep: 0.005}
	default:
		return GridConfig{XMin: 0, XMax: 0.5, XStep: 0.005}
	}
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "infinite",
		Mode:       ModeSolve,
		Integrator: DefaultIntegrator,
		Grid:       DefaultGrid("infinite"),
		Params:     ParamsConfig{Wall: DefaultWall, C: DefaultC},
		Energies:   []float64{1, 4, 9, 16},
		Scan:       ScanConfig{Min: 0, Max: 5, Step: 0.01},
		Search: SearchConfig{
			Tolerance:  DefaultTolerance,
			Iterations: DefaultIterations,
			Margin:     DefaultMargin,
			RootSolver: DefaultRootSolver,
		},
		Workers:  runtime.NumCPU(),
		Substeps: DefaultSubsteps,
	}
}

// Load reads a YAML config and fills the fields it leaves unset from
// DefaultConfig and the model's default grid.
func Load(path string) (*Config, error) {
	raw, err := Read(path)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), raw), nil
}

// Read parses a YAML config without applying defaults, for layering over
// a preset with Merge.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", eigen.ErrConfiguration, path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the selected mode depends on.
func (c *Config) Validate() error {
	if !knownModel(c.Model) {
		return fmt.Errorf("%w: unknown model %q", eigen.ErrConfiguration, c.Model)
	}
	if _, err := eigen.NewGrid(c.Grid.XMin, c.Grid.XMax, c.Grid.XStep); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative", eigen.ErrConfiguration)
	}
	if c.Search.Tolerance < 0 || c.Search.Iterations < 0 || c.Search.Margin < 0 {
		return fmt.Errorf("%w: search settings must be non-negative", eigen.ErrConfiguration)
	}

	switch c.Mode {
	case ModeSolve:
		if len(c.Energies) == 0 {
			return fmt.Errorf("%w: solve mode needs energies", eigen.ErrConfiguration)
		}
		if len(c.Parities) > 0 && len(c.Parities) != len(c.Energies) {
			return fmt.Errorf("%w: %d parities for %d energies", eigen.ErrConfiguration, len(c.Parities), len(c.Energies))
		}
		if _, err := parities(c.Parities); err != nil {
			return err
		}
	case ModeBracket:
		if len(c.Brackets) == 0 {
			return fmt.Errorf("%w: bracket mode needs brackets", eigen.ErrConfiguration)
		}
		for _, b := range c.Brackets {
			if _, err := b.Bracket(); err != nil {
				return err
			}
		}
	case ModeScan:
		if c.Scan.Max <= c.Scan.Min || c.Scan.Step <= 0 {
			return fmt.Errorf("%w: scan range [%g, %g] step %g", eigen.ErrConfiguration, c.Scan.Min, c.Scan.Max, c.Scan.Step)
		}
		if _, err := parities(c.Scan.Parities); err != nil {
			return err
		}
	case ModeFinite:
		if c.Model != "finite" {
			return fmt.Errorf("%w: finite mode requires the finite model", eigen.ErrConfiguration)
		}
		if len(c.Params.Z0s) == 0 {
			return fmt.Errorf("%w: finite mode needs z0 values", eigen.ErrConfiguration)
		}
		for _, z0 := range c.Params.Z0s {
			if !(z0 > 0) || math.IsInf(z0, 0) {
				return fmt.Errorf("%w: z0 must be positive, got %g", eigen.ErrConfiguration, z0)
			}
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", eigen.ErrConfiguration, c.Mode)
	}
	return nil
}

// Candidates pairs every energy with its parity; missing parities are
// classified from the energy.
func (c *Config) Candidates() ([]eigen.Candidate, error) {
	ps, err := parities(c.Parities)
	if err != nil {
		return nil, err
	}
	out := make([]eigen.Candidate, len(c.Energies))
	for i, e := range c.Energies {
		out[i] = eigen.Candidate{Value: e}
		if i < len(ps) {
			out[i].Parity = ps[i]
		}
	}
	return out, nil
}

func (c *Config) BracketList() ([]eigen.Bracket, error) {
	out := make([]eigen.Bracket, 0, len(c.Brackets))
	for _, b := range c.Brackets {
		br, err := b.Bracket()
		if err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, nil
}

// ScanParities returns the parities to scan, both when none are set.
func (c *Config) ScanParities() ([]eigen.Parity, error) {
	ps, err := parities(c.Scan.Parities)
	if err != nil || len(ps) > 0 {
		return ps, err
	}
	return []eigen.Parity{eigen.Even, eigen.Odd}, nil
}

// ModelParams returns the values to apply with SetParam on the model.
func (c *Config) ModelParams() map[string]float64 {
	params := make(map[string]float64)
	switch c.Model {
	case "finite":
		if c.Params.V0 > 0 {
			params["v0"] = c.Params.V0
		}
		if c.Params.Wall > 0 {
			params["wall"] = c.Params.Wall
		}
	case "harmonic":
		if c.Params.C > 0 {
			params["c"] = c.Params.C
		}
	}
	return params
}

func (b BracketConfig) Bracket() (eigen.Bracket, error) {
	p, err := eigen.ParseParity(b.Parity)
	if err != nil {
		return eigen.Bracket{}, fmt.Errorf("%w: %v", eigen.ErrConfiguration, err)
	}
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || b.Low == b.High {
		return eigen.Bracket{}, fmt.Errorf("%w: empty bracket [%g, %g]", eigen.ErrConfiguration, b.Low, b.High)
	}
	return eigen.Bracket{Low: b.Low, High: b.High, Parity: p}, nil
}

func parities(names []string) ([]eigen.Parity, error) {
	out := make([]eigen.Parity, 0, len(names))
	for _, n := range names {
		p, err := eigen.ParseParity(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", eigen.ErrConfiguration, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func knownModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
