package eigen

import (
	"errors"
	"fmt"
)

// Domain errors for eigenvalue searches.
var (
	// ErrConfiguration indicates a run was started without a valid model or grid.
	ErrConfiguration = errors.New("eigen: model or grid not configured")

	// ErrNoSignChange indicates a bracket whose endpoints do not straddle a root.
	ErrNoSignChange = errors.New("eigen: no sign change across bracket")

	// ErrNotConverged indicates a root solver gave up before meeting its tolerance.
	ErrNotConverged = errors.New("eigen: root solver did not converge")

	// ErrDiverged indicates the shooting integration overflowed.
	ErrDiverged = errors.New("eigen: integration diverged (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("eigen: adaptive step below minimum")

	// ErrEmptyResult indicates normalization of a solution with no samples.
	ErrEmptyResult = errors.New("eigen: cannot normalize empty result")

	// ErrZeroNorm indicates a wavefunction whose integrated density is zero.
	ErrZeroNorm = errors.New("eigen: wavefunction has zero norm")
)

// IsConvergenceFailure reports whether err belongs to the per-candidate
// convergence family. These never abort a batch.
func IsConvergenceFailure(err error) bool {
	return errors.Is(err, ErrNoSignChange) ||
		errors.Is(err, ErrNotConverged) ||
		errors.Is(err, ErrDiverged) ||
		errors.Is(err, ErrStepTooSmall)
}

func IsNormalizationError(err error) bool {
	return errors.Is(err, ErrEmptyResult) || errors.Is(err, ErrZeroNorm)
}

// CandidateError wraps a failure with the batch item that produced it.
type CandidateError struct {
	Index   int
	Energy  float64
	Parity  Parity
	Wrapped error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %d (ε=%.6g, %s): %v", e.Index, e.Energy, e.Parity, e.Wrapped)
}

func (e *CandidateError) Unwrap() error {
	return e.Wrapped
}

// ShootError wraps an integration failure with the energy and position where
// it happened.
type ShootError struct {
	Energy  float64
	X       float64
	Wrapped error
}

func (e *ShootError) Error() string {
	return fmt.Sprintf("shoot ε=%.6g at x=%.4f: %v", e.Energy, e.X, e.Wrapped)
}

func (e *ShootError) Unwrap() error {
	return e.Wrapped
}
