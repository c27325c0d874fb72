package modal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry indicates non-positive dimensions or element counts.
	ErrInvalidGeometry = errors.New("modal: invalid geometry")

	// ErrIllConditioned indicates a mesh too coarse for the requested modes.
	ErrIllConditioned = errors.New("modal: ill-conditioned model")

	// ErrNotPositiveDefinite indicates a constrained K or M without a positive spectrum.
	ErrNotPositiveDefinite = errors.New("modal: matrix not positive definite")
)

type IllConditionedModelError struct {
	FreeDOF   int
	Requested int
}

func (e *IllConditionedModelError) Error() string {
	return fmt.Sprintf("%v: %d free degrees of freedom for %d requested modes", ErrIllConditioned, e.FreeDOF, e.Requested)
}

func (e *IllConditionedModelError) Unwrap() error { return ErrIllConditioned }

// NonPositiveDefiniteError names the offending matrix, "K" or "M".
type NonPositiveDefiniteError struct {
	Matrix string
	Reason string
}

func (e *NonPositiveDefiniteError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrNotPositiveDefinite, e.Matrix, e.Reason)
}

func (e *NonPositiveDefiniteError) Unwrap() error { return ErrNotPositiveDefinite }
