package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	selected lipgloss.Style
	even     lipgloss.Style
	odd      lipgloss.Style
	warning  lipgloss.Style
	key      lipgloss.Style
	panel    lipgloss.Style
}

func stylesFor(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		subtle:   lipgloss.NewStyle().Foreground(t.Muted),
		header:   lipgloss.NewStyle().Bold(true).Foreground(t.Text).Padding(0, 1),
		cell:     lipgloss.NewStyle().Foreground(t.Text).Padding(0, 1),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		even:     lipgloss.NewStyle().Foreground(t.Even),
		odd:      lipgloss.NewStyle().Foreground(t.Odd),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		key:      lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}

// SparklineChart renders a one-line sparkline of values squeezed to width.
func SparklineChart(values []float64, width int) string {
	if width < 1 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := bounds(values)
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// Separator renders a muted divider of the given width.
func Separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	return strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3)
}
