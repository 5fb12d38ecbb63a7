package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParams indicates a construction or tuning value outside its valid range.
	ErrInvalidParams = errors.New("dynamo: invalid parameters")

	// ErrTornDown indicates use of a session after its buffers were released.
	ErrTornDown = errors.New("dynamo: session torn down")

	// ErrDiverged indicates a frame produced a non-finite coordinate and was discarded.
	ErrDiverged = errors.New("dynamo: state diverged (NaN or Inf detected)")

	// ErrUnknown indicates a lookup by name found nothing.
	ErrUnknown = errors.New("dynamo: unknown name")
)

// ParamError names the offending parameter.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%g %s", ErrInvalidParams, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParams
}

// DivergenceError wraps ErrDiverged with the frame and particle that failed.
type DivergenceError struct {
	Frame    int
	Particle int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("frame %d particle %d: %s", e.Frame, e.Particle, ErrDiverged)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}
