package eigen

import "fmt"

// SearchState is the terminal state of a bisection.
type SearchState int

const (
	Bracketing SearchState = iota
	Converged
	Exhausted
)

func (s SearchState) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return "bracketing"
	}
}

// Estimate is the outcome of narrowing a bracket.
type Estimate struct {
	Energy     float64     `json:"energy"`
	Low        float64     `json:"low"`
	High       float64     `json:"high"`
	Iterations int         `json:"iterations"`
	State      SearchState `json:"state"`
}

// Degraded reports whether the iteration cap was hit before the bracket
// width met the tolerance.
func (e Estimate) Degraded() bool {
	return e.State == Exhausted
}

func (e Estimate) Width() float64 {
	if e.High > e.Low {
		return e.High - e.Low
	}
	return e.Low - e.High
}

type Solution struct {
	Label      string
	Energy     float64
	Parity     Parity
	Raw        []float64
	Normalized []float64
	Estimate   *Estimate
	Metrics    map[string]float64
}

func NewSolution(energy float64, parity Parity, raw []float64) *Solution {
	return &Solution{
		Label:   DefaultLabel(energy),
		Energy:  energy,
		Parity:  parity,
		Raw:     raw,
		Metrics: make(map[string]float64),
	}
}

func DefaultLabel(energy float64) string {
	return fmt.Sprintf("ε = %.3f", energy)
}

// Endpoint is the raw value at the far end of the grid.
func (s *Solution) Endpoint() float64 {
	if len(s.Raw) == 0 {
		return 0
	}
	return s.Raw[len(s.Raw)-1]
}

// Values returns the normalized samples when present and the raw ones otherwise.
func (s *Solution) Values() []float64 {
	if len(s.Normalized) > 0 {
		return s.Normalized
	}
	return s.Raw
}

// Mirror extends the half-domain solution to the full domain using the
// solution parity. The returned slices line up with Grid.Mirrored.
func (s *Solution) Mirror(g *Grid) (xs, ys []float64) {
	vals := s.Values()
	sign := s.Parity.Sign()
	n := len(vals)
	if n == 0 {
		return nil, nil
	}
	ys = make([]float64, 0, 2*n-1)
	for i := n - 1; i > 0; i-- {
		ys = append(ys, sign*vals[i])
	}
	ys = append(ys, vals...)
	return g.Mirrored(), ys
}

func (s SearchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SearchState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "converged":
		*s = Converged
	case "exhausted":
		*s = Exhausted
	case "bracketing", "":
		*s = Bracketing
	default:
		return fmt.Errorf("unknown search state: %q", b)
	}
	return nil
}
