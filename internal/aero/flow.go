package aero

import (
	"fmt"
	"math"

	"github.com/san-kum/panelflutter/internal/atmosphere"
)

// FlowCondition is the flight condition and velocity sweep of one analysis.
// Mach selects the aerodynamic regime; density comes from the altitude.
type FlowCondition struct {
	Mach        float64 `yaml:"mach" json:"mach"`
	Altitude    float64 `yaml:"altitude" json:"altitude"` // m
	VelocityMin float64 `yaml:"velocity_min" json:"velocity_min"`
	VelocityMax float64 `yaml:"velocity_max" json:"velocity_max"`
	Points      int     `yaml:"points" json:"points"`
}

func (f FlowCondition) Validate() error {
	if f.Points < 2 {
		return &InsufficientRangeError{Points: f.Points, Min: f.VelocityMin, Max: f.VelocityMax}
	}
	if !(f.VelocityMin > 0) || !(f.VelocityMax > f.VelocityMin) {
		return &InsufficientRangeError{Points: f.Points, Min: f.VelocityMin, Max: f.VelocityMax}
	}
	if math.IsNaN(f.Mach) || f.Mach < 0 {
		return fmt.Errorf("%w: Mach %g must be non-negative", ErrInvalidFlow, f.Mach)
	}
	if _, err := atmosphere.At(f.Altitude); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlow, err)
	}
	return nil
}

// Atmosphere returns the standard atmosphere at the flow altitude.
func (f FlowCondition) Atmosphere() (atmosphere.State, error) {
	return atmosphere.At(f.Altitude)
}

// Velocities returns Points evenly spaced samples from VelocityMin to
// VelocityMax inclusive.
func (f FlowCondition) Velocities() []float64 {
	if f.Points < 2 {
		return nil
	}
	out := make([]float64, f.Points)
	step := (f.VelocityMax - f.VelocityMin) / float64(f.Points-1)
	for i := range out {
		out[i] = f.VelocityMin + float64(i)*step
	}
	out[len(out)-1] = f.VelocityMax
	return out
}

// Beta is the compressibility parameter √|1−M²|, floored near Mach 1.
func (f FlowCondition) Beta() float64 {
	return math.Max(math.Sqrt(math.Abs(1-f.Mach*f.Mach)), 0.1)
}

func (f FlowCondition) String() string {
	return fmt.Sprintf("M%.2f @ %.0f m, %g-%g m/s x%d", f.Mach, f.Altitude, f.VelocityMin, f.VelocityMax, f.Points)
}
