// Package viz renders eigenstates in the terminal.
//
//   - [PlotSolutions]: asciigraph chart of mirrored wavefunctions
//   - [Summary]: lipgloss table of energies, parities and diagnostics
//   - [Browser]: Bubble Tea model for stepping through a stored run
//   - [Canvas]: braille pixel canvas used by the browser
//
// # Key Bindings
//
//	j/k - Select solution
//	a   - Overlay all solutions
//	t   - Cycle color themes
//	q   - Quit
package viz
