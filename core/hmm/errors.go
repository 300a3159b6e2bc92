package hmm

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter marks a row of the transition, emission or prior
	// that is not a probability distribution.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDegenerateLikelihood marks a zero normalizer: the observations have
	// zero probability under the current parameters.
	ErrDegenerateLikelihood = errors.New("degenerate likelihood")
	// ErrNotConverged is reported (never returned as a failure) when a
	// training loop exhausts its iteration cap before reaching epsilon.
	ErrNotConverged = errors.New("training did not converge")

	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrForwardRequired   = errors.New("forward pass required for current parameters")
)
