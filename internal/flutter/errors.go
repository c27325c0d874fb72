package flutter

import (
	"errors"
	"fmt"
)

var (
	// ErrConvergence indicates a PK iteration that ran out of budget.
	ErrConvergence = errors.New("flutter: PK iteration did not converge")

	// ErrCancelled indicates a sweep stopped by its context.
	ErrCancelled = errors.New("flutter: sweep cancelled")
)

// ConvergenceFailureError is recorded against one sample and mode. The
// sweep continues past it.
type ConvergenceFailureError struct {
	Velocity   float64
	Mode       int
	Iterations int
	Change     float64 // last relative frequency change
}

func (e *ConvergenceFailureError) Error() string {
	return fmt.Sprintf("%v: mode %d at %.2f m/s after %d iterations (last change %.2e)", ErrConvergence, e.Mode+1, e.Velocity, e.Iterations, e.Change)
}

func (e *ConvergenceFailureError) Unwrap() error { return ErrConvergence }

// CancelledError accompanies the partial result of a cancelled sweep.
type CancelledError struct {
	Completed int
	Total     int
	Err       error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%v after %d of %d samples: %v", ErrCancelled, e.Completed, e.Total, e.Err)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Err} }

// SampleError wraps a backend failure with the velocity it occurred at.
type SampleError struct {
	Velocity float64
	Mode     int
	Err      error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("flutter: mode %d at %.2f m/s: %v", e.Mode+1, e.Velocity, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }
