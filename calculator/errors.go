package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModel      = errors.New("unknown model")
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrNotConverged      = errors.New("nonlinear iteration did not converge")
	ErrInvalidOptions    = errors.New("invalid solver options")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidQuery      = errors.New("invalid query point")
)

// SimulationError wraps an error with the step and time at which it happened.
type SimulationError struct {
	Model   string
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: step %d (t = %g s): %v", e.Model, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
