// Package aero computes generalized aerodynamic forces on panel modes.
//
// Three backends share one contract: piston theory for supersonic flow, a
// doublet lattice for subsonic and transonic flow, and an adapter around an
// external solver process. Forces come back as an N×N complex matrix Q with
// the aeroelastic system written as [K − ω²M + q·Q(k)]·η = 0.
package aero

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/modal"
)

// PistonMinMach is the Mach number separating the subsonic and supersonic
// backends.
const PistonMinMach = 1.2

type Backend interface {
	Name() string
	// MachRange is the half-open validity window [min, max).
	MachRange() (min, max float64)
	// GeneralizedForces returns Q at reduced frequency k = ωc/(2V).
	GeneralizedForces(ctx context.Context, modes *modal.Result, flow FlowCondition, velocity, k float64) (*mat.CDense, error)
}

// Supports reports whether mach lies in the backend's window.
func Supports(b Backend, mach float64) bool {
	lo, hi := b.MachRange()
	return mach >= lo && mach < hi
}

func checkRegime(b Backend, mach float64) error {
	if Supports(b, mach) {
		return nil
	}
	lo, hi := b.MachRange()
	return &UnsupportedFlowRegimeError{Backend: b.Name(), Mach: mach, Min: lo, Max: hi}
}
