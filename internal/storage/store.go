package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/qwell/internal/eigen"
)

const (
	metadataFile  = "metadata.json"
	solutionsFile = "solutions.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type GridMeta struct {
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	XStep  float64 `json:"x_step"`
	Points int     `json:"points"`
}

type SolutionMeta struct {
	Column   string             `json:"column"`
	Label    string             `json:"label"`
	Energy   float64            `json:"energy"`
	Parity   eigen.Parity       `json:"parity"`
	Estimate *eigen.Estimate    `json:"estimate,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Mode       string             `json:"mode"`
	Integrator string             `json:"integrator"`
	RootSolver string             `json:"root_solver,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Grid       GridMeta           `json:"grid"`
	Params     map[string]float64 `json:"params,omitempty"`
	Z0s        []float64          `json:"z0s,omitempty"`
	Solutions  []SolutionMeta     `json:"solutions"`
	Failures   []string           `json:"failures,omitempty"`
}

// Wall is the half-width of the well drawn in plots: the wall parameter
// when recorded, the domain end for the infinite well and zero otherwise.
func (m RunMetadata) Wall() float64 {
	if w := m.Params["wall"]; w > 0 {
		return w
	}
	if m.Model == "infinite" {
		return m.Grid.XMax
	}
	return 0
}

// Run is a stored run with its solutions rebuilt on the saved grid.
type Run struct {
	Meta      RunMetadata
	Grid      *eigen.Grid
	Solutions []*eigen.Solution
}

// NewRunID returns <model>_<unix>_<8 hex chars>.
func NewRunID(model string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", model, now.Unix(), uuid.NewString()[:8])
}

// Save writes metadata.json and solutions.csv (x then one normalized column
// per solution) under a new run directory and returns the run ID.
func (s *Store) Save(meta RunMetadata, g *eigen.Grid, sols []*eigen.Solution) (string, error) {
	if g == nil {
		return "", eigen.ErrConfiguration
	}
	now := time.Now()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Model, now)
	}
	meta.Grid = GridMeta{XMin: g.XMin(), XMax: g.XMax(), XStep: g.Step(), Points: g.Len()}
	meta.Solutions = make([]SolutionMeta, len(sols))
	for i, sol := range sols {
		meta.Solutions[i] = SolutionMeta{
			Column:   fmt.Sprintf("psi_%d", i),
			Label:    sol.Label,
			Energy:   sol.Energy,
			Parity:   sol.Parity,
			Estimate: sol.Estimate,
			Metrics:  sol.Metrics,
		}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, solutionsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, g.Points(), meta.Solutions, sols); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSolutions reads the CSV columns back into normalized solutions.
func (s *Store) LoadSolutions(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	g, err := eigen.NewGrid(meta.Grid.XMin, meta.Grid.XMax, meta.Grid.XStep)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, solutionsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &Run{Meta: *meta, Grid: g}, nil
	}

	header := records[0]
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	sols := make([]*eigen.Solution, 0, len(meta.Solutions))
	for _, sm := range meta.Solutions {
		col, ok := columns[sm.Column]
		if !ok {
			return nil, fmt.Errorf("run %s: missing column %s", runID, sm.Column)
		}
		vals := make([]float64, 0, len(records)-1)
		for _, record := range records[1:] {
			if col >= len(record) {
				continue
			}
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: column %s: %w", runID, sm.Column, err)
			}
			vals = append(vals, v)
		}
		sols = append(sols, &eigen.Solution{
			Label:      sm.Label,
			Energy:     sm.Energy,
			Parity:     sm.Parity,
			Normalized: vals,
			Estimate:   sm.Estimate,
			Metrics:    sm.Metrics,
		})
	}

	return &Run{Meta: *meta, Grid: g, Solutions: sols}, nil
}
