package eigen

import (
	"fmt"
	"math"
	"strings"
)

type Parity int

const (
	ParityAuto Parity = iota
	Even
	Odd
)

func (p Parity) String() string {
	switch p {
	case Even:
		return "even"
	case Odd:
		return "odd"
	default:
		return "auto"
	}
}

// Sign is the factor applied to ψ(x) to obtain ψ(-x).
func (p Parity) Sign() float64 {
	if p == Odd {
		return -1
	}
	return 1
}

func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "even":
		return Even, nil
	case "odd":
		return Odd, nil
	case "", "auto":
		return ParityAuto, nil
	}
	return ParityAuto, fmt.Errorf("unknown parity: %q", s)
}

func (p Parity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Parity) UnmarshalText(b []byte) error {
	v, err := ParseParity(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Classify estimates the quantum number n = round(√ε) and maps odd n to an
// even wavefunction and even n to an odd one. The estimate is only meaningful
// near an eigenvalue of the infinite well.
func Classify(energy float64) Parity {
	if energy < 0 || math.IsNaN(energy) {
		energy = 0
	}
	n := int(math.Round(math.Sqrt(energy)))
	if n%2 == 1 {
		return Even
	}
	return Odd
}
