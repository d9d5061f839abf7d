package dynamo

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the generator, the energy model and both solvers.
var (
	// ErrInvalidArgument indicates a parameter rejected before any computation.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrNumericalFailure indicates the integrator could not produce a trajectory.
	ErrNumericalFailure = errors.New("dynamo: numerical failure")

	// ErrShapeMismatch indicates mismatched vector/matrix dimensions.
	ErrShapeMismatch = errors.New("dynamo: shape mismatch")
)

// Causes wrapped by ErrNumericalFailure.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the resolution of t.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the integrator exhausted its step budget.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// SimulationError wraps an integration failure with the point where it happened.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// NumericalFailure builds a SimulationError that matches both ErrNumericalFailure
// and cause under errors.Is.
func NumericalFailure(step int, t float64, x State, cause error) error {
	return &SimulationError{
		Step:    step,
		Time:    t,
		State:   x.Clone(),
		Wrapped: fmt.Errorf("%w: %w", ErrNumericalFailure, cause),
	}
}
