package eigen

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{math.Inf(1), 0}, false},
		{"with -Inf", State{0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	s := State{1, 2}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Error("Clone shares backing array")
	}
	if got := (State{3, 4}).Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm = %v, want 5", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		energy float64
		want   Parity
	}{
		{1, Even},
		{0.9, Even},
		{4, Odd},
		{9, Even},
		{16, Odd},
		{24.8, Even},
		{0, Odd},
		{-3, Odd},
	}

	for _, tt := range tests {
		if got := Classify(tt.energy); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.energy, got, tt.want)
		}
	}
}

func TestCandidate_Resolve(t *testing.T) {
	c := Candidate{Value: 4}.Resolve()
	if c.Parity != Odd {
		t.Errorf("expected odd, got %s", c.Parity)
	}

	c = Candidate{Value: 4, Parity: Even}.Resolve()
	if c.Parity != Even {
		t.Errorf("explicit parity overridden: %s", c.Parity)
	}
}

func TestParseParity(t *testing.T) {
	for in, want := range map[string]Parity{"even": Even, "ODD": Odd, "": ParityAuto, "auto": ParityAuto} {
		got, err := ParseParity(in)
		if err != nil {
			t.Fatalf("ParseParity(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseParity(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseParity("sideways"); err == nil {
		t.Error("expected error for unknown parity")
	}
}

func TestCandidateError(t *testing.T) {
	err := &CandidateError{Index: 2, Energy: 1.5, Parity: Even, Wrapped: ErrNoSignChange}
	if !errors.Is(err, ErrNoSignChange) {
		t.Error("CandidateError does not unwrap")
	}
	if !IsConvergenceFailure(err) {
		t.Error("expected convergence failure")
	}
	if IsNormalizationError(err) {
		t.Error("unexpected normalization error")
	}
	expected := "candidate 2 (ε=1.5, even): eigen: no sign change across bracket"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}
