package aero

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFlowRegime indicates a backend invoked outside its Mach window.
	ErrUnsupportedFlowRegime = errors.New("aero: unsupported flow regime")

	// ErrNumericalSingularity indicates a singular or near-singular linear solve.
	ErrNumericalSingularity = errors.New("aero: numerical singularity")

	// ErrInsufficientRange indicates a velocity sweep that cannot bracket anything.
	ErrInsufficientRange = errors.New("aero: insufficient velocity range")

	// ErrInvalidFlow indicates a flow condition with out-of-range values.
	ErrInvalidFlow = errors.New("aero: invalid flow condition")
)

type UnsupportedFlowRegimeError struct {
	Backend  string
	Mach     float64
	Min, Max float64
}

func (e *UnsupportedFlowRegimeError) Error() string {
	return fmt.Sprintf("%v: %s is valid for Mach in [%g, %g), got %g", ErrUnsupportedFlowRegime, e.Backend, e.Min, e.Max, e.Mach)
}

func (e *UnsupportedFlowRegimeError) Unwrap() error { return ErrUnsupportedFlowRegime }

// NumericalSingularityError carries the reduced frequency of the failed
// solve and the estimated condition number.
type NumericalSingularityError struct {
	Backend          string
	ReducedFrequency float64
	Condition        float64
}

func (e *NumericalSingularityError) Error() string {
	return fmt.Sprintf("%v: %s kernel at k=%.4g (condition %.3g)", ErrNumericalSingularity, e.Backend, e.ReducedFrequency, e.Condition)
}

func (e *NumericalSingularityError) Unwrap() error { return ErrNumericalSingularity }

type InsufficientRangeError struct {
	Points   int
	Min, Max float64
}

func (e *InsufficientRangeError) Error() string {
	if e.Points < 2 {
		return fmt.Sprintf("%v: %d velocity points, need at least 2", ErrInsufficientRange, e.Points)
	}
	return fmt.Sprintf("%v: velocities [%g, %g] m/s must be positive and increasing", ErrInsufficientRange, e.Min, e.Max)
}

func (e *InsufficientRangeError) Unwrap() error { return ErrInsufficientRange }
