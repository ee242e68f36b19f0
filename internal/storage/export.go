package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/qwell/internal/eigen"
)

type ExportSolution struct {
	SolutionMeta
	Values []float64 `json:"values"`
}

type ExportData struct {
	RunMetadata
	X         []float64        `json:"x"`
	Solutions []ExportSolution `json:"solutions"`
}

// WriteCSV writes x followed by one column per solution. Normalized values
// are used when present.
func WriteCSV(w io.Writer, xs []float64, meta []SolutionMeta, sols []*eigen.Solution) error {
	cw := csv.NewWriter(w)

	header := []string{"x"}
	for _, m := range meta {
		header = append(header, m.Column)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, x := range xs {
		row := []string{strconv.FormatFloat(x, 'f', 6, 64)}
		for _, sol := range sols {
			vals := sol.Values()
			cell := ""
			if i < len(vals) {
				cell = strconv.FormatFloat(vals[i], 'g', 10, 64)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportJSON dumps a stored run with the full solution data.
func ExportJSON(w io.Writer, run *Run) error {
	data := ExportData{
		RunMetadata: run.Meta,
		X:           run.Grid.Points(),
		Solutions:   make([]ExportSolution, len(run.Solutions)),
	}
	for i, sol := range run.Solutions {
		data.Solutions[i] = ExportSolution{Values: sol.Values()}
		if i < len(run.Meta.Solutions) {
			data.Solutions[i].SolutionMeta = run.Meta.Solutions[i]
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the mirrored full-domain solutions of a stored run.
func ExportCSV(w io.Writer, run *Run) error {
	cw := csv.NewWriter(w)
	header := []string{"x"}
	cols := make([][]float64, len(run.Solutions))
	var xs []float64
	for i, sol := range run.Solutions {
		header = append(header, sol.Label)
		xs, cols[i] = sol.Mirror(run.Grid)
	}
	if xs == nil {
		xs = run.Grid.Mirrored()
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, x := range xs {
		row := []string{strconv.FormatFloat(x, 'f', 6, 64)}
		for _, col := range cols {
			cell := ""
			if i < len(col) {
				cell = strconv.FormatFloat(col[i], 'g', 10, 64)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
