package material

import (
	"errors"
	"fmt"
)

// ErrInvalidLaminate is the sentinel behind every InvalidLaminateError.
var ErrInvalidLaminate = errors.New("material: invalid laminate")

// ErrInvalidMaterial indicates an isotropic material with out-of-range properties.
var ErrInvalidMaterial = errors.New("material: invalid material")

// InvalidLaminateError reports which ply broke a laminate invariant.
// Ply is -1 when the problem concerns the stack as a whole.
type InvalidLaminateError struct {
	Ply    int
	Reason string
}

func (e *InvalidLaminateError) Error() string {
	if e.Ply < 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidLaminate, e.Reason)
	}
	return fmt.Sprintf("%v: ply %d: %s", ErrInvalidLaminate, e.Ply, e.Reason)
}

func (e *InvalidLaminateError) Unwrap() error {
	return ErrInvalidLaminate
}

// PropertyError names the isotropic property that failed validation.
type PropertyError struct {
	Property string
	Value    float64
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%v: %s = %g", ErrInvalidMaterial, e.Property, e.Value)
}

func (e *PropertyError) Unwrap() error {
	return ErrInvalidMaterial
}
