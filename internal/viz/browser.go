package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qwell/internal/metrics"
	"github.com/san-kum/qwell/internal/storage"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	First   key.Binding
	Last    key.Binding
	Overlay key.Binding
	Theme   key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Overlay, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.First, k.Last}, {k.Overlay, k.Theme, k.Quit}}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
	First:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Overlay: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "overlay")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// Browser is a bubbletea model stepping through the solutions of a stored run.
type Browser struct {
	run     *storage.Run
	cursor  int
	overlay bool
	theme   Theme
	help    help.Model
	width   int
	height  int
}

func NewBrowser(run *storage.Run) Browser {
	return Browser{
		run:    run,
		theme:  Themes[0],
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

func (b Browser) Cursor() int   { return b.cursor }
func (b Browser) Overlay() bool { return b.overlay }
func (b Browser) Theme() Theme  { return b.theme }
func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.help.Width = msg.Width
	}
	return b, nil
}

func (b Browser) handleKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	n := b.count()
	switch {
	case key.Matches(msg, keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, keys.Down):
		if b.cursor < n-1 {
			b.cursor++
		}
	case key.Matches(msg, keys.First):
		b.cursor = 0
	case key.Matches(msg, keys.Last):
		if n > 0 {
			b.cursor = n - 1
		}
	case key.Matches(msg, keys.Overlay):
		b.overlay = !b.overlay
	case key.Matches(msg, keys.Theme):
		b.theme = b.theme.next()
	}
	return b, nil
}

func (b Browser) count() int {
	if b.run == nil {
		return 0
	}
	return len(b.run.Solutions)
}

func (b Browser) View() string {
	st := stylesFor(b.theme)
	var s strings.Builder

	if b.run == nil || b.count() == 0 {
		s.WriteString("\n  " + st.title.Render("QWELL") + "\n\n  " + st.subtle.Render("run has no solutions") + "\n\n  " + b.hints(st) + "\n")
		return s.String()
	}

	meta := b.run.Meta
	s.WriteString("\n  " + st.title.Render("QWELL") + "  " + st.subtle.Render(fmt.Sprintf("%s · %s · %s", meta.ID, meta.Model, meta.Mode)) + "\n")
	s.WriteString("  " + st.subtle.Render(Separator(max(b.width-4, 8))) + "\n\n")

	left := b.viewList(st)
	right := b.viewPlot(st)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	s.WriteString("\n" + b.viewDetails(st))
	s.WriteString("\n  " + b.hints(st) + "\n")
	return s.String()
}

func (b Browser) viewList(st styles) string {
	var s strings.Builder
	for i, sol := range b.run.Solutions {
		line := fmt.Sprintf("%-24s", sol.Label)
		parity := st.even
		if sol.Parity.Sign() < 0 {
			parity = st.odd
		}
		if i == b.cursor {
			s.WriteString(st.selected.Render("▸ "+line) + " " + parity.Render(sol.Parity.String()) + "\n")
		} else {
			s.WriteString(st.subtle.Render("  "+line) + " " + parity.Render(sol.Parity.String()) + "\n")
		}
	}
	return s.String()
}

func (b Browser) viewPlot(st styles) string {
	cw := max((b.width-40)/2, 16)
	ch := max((b.height-14)/2, 6)
	c := NewCanvas(cw, ch)

	sols := b.run.Solutions[b.cursor : b.cursor+1]
	if b.overlay {
		sols = b.run.Solutions
	}
	for _, sol := range sols {
		xs, ys := sol.Mirror(b.run.Grid)
		c.Curve(xs, ys)
	}

	if wall := b.run.Meta.Wall(); wall > 0 && b.run.Grid != nil {
		xMax := b.run.Grid.XMax()
		w := c.Width*2 - 1
		for _, x := range []float64{-wall, wall} {
			c.VLine(scale(x, -xMax, xMax, w))
		}
	}
	return st.panel.Render(strings.TrimRight(c.String(), "\n"))
}

func (b Browser) viewDetails(st styles) string {
	sol := b.run.Solutions[b.cursor]
	var s strings.Builder
	s.WriteString(fmt.Sprintf("  %s %.8f   %s %s", st.subtle.Render("ε"), sol.Energy, st.subtle.Render("parity"), sol.Parity))
	if est := sol.Estimate; est != nil {
		state := est.State.String()
		if est.Degraded() {
			state = st.warning.Render(state)
		}
		s.WriteString(fmt.Sprintf("   %s [%.6f, %.6f] %s after %d", st.subtle.Render("bracket"), est.Low, est.High, state, est.Iterations))
	}
	s.WriteString("\n")

	if len(sol.Metrics) > 0 {
		names := make([]string, 0, len(sol.Metrics))
		for name := range sol.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = st.subtle.Render(name) + " " + fmt.Sprintf("%.3g", sol.Metrics[name])
		}
		s.WriteString("  " + strings.Join(parts, "   ") + "\n")
	}

	xs, ys := sol.Mirror(b.run.Grid)
	density := make([]float64, len(ys))
	for i, y := range ys {
		density[i] = y * y
	}
	s.WriteString(fmt.Sprintf("  %s %s  %s %.4f\n", st.subtle.Render("|ψ|²"), SparklineChart(density, 40), st.subtle.Render("∫"), metrics.Density(xs, ys)))
	return s.String()
}

func (b Browser) hints(st styles) string {
	h := b.help
	h.Styles.ShortKey = st.key
	h.Styles.ShortDesc = st.subtle
	h.Styles.ShortSeparator = st.subtle
	return h.View(keys)
}

// RunBrowser starts the browser on the terminal and blocks until it quits.
func RunBrowser(run *storage.Run) error {
	_, err := tea.NewProgram(NewBrowser(run), tea.WithAltScreen()).Run()
	return err
}
