package viz

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/qwell/internal/eigen"
)

var summaryHeaders = []string{"#", "label", "parity", "energy", "state", "nodes", "residual", "norm err"}

// Summary renders one table row per solution using the first theme.
func Summary(sols []*eigen.Solution) string {
	return SummaryWithTheme(sols, Themes[0])
}

func SummaryWithTheme(sols []*eigen.Solution, t Theme) string {
	st := stylesFor(t)
	rows := make([][]string, len(sols))
	for i, sol := range sols {
		rows[i] = summaryRow(i, sol)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.subtle).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			if row < 0 || row >= len(sols) {
				return st.cell
			}
			switch {
			case col == 2 && sols[row].Parity == eigen.Odd:
				return st.odd.Padding(0, 1)
			case col == 2:
				return st.even.Padding(0, 1)
			case col == 4 && sols[row].Estimate != nil && sols[row].Estimate.Degraded():
				return st.warning.Padding(0, 1)
			}
			return st.cell
		})
	return tbl.Render()
}

func summaryRow(i int, sol *eigen.Solution) []string {
	state := "-"
	if sol.Estimate != nil {
		state = sol.Estimate.State.String()
	}
	return []string{
		strconv.Itoa(i),
		sol.Label,
		sol.Parity.String(),
		fmt.Sprintf("%.6f", sol.Energy),
		state,
		metric(sol, "nodes", "%.0f"),
		metric(sol, "residual", "%.2e"),
		metric(sol, "norm_error", "%.2e"),
	}
}

func metric(sol *eigen.Solution, name, format string) string {
	v, ok := sol.Metrics[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, v)
}
