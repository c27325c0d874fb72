package flutter

import "fmt"

type Rating int

const (
	Unsafe Rating = iota
	Marginal
	Safe
)

func (r Rating) String() string {
	switch r {
	case Safe:
		return "safe"
	case Marginal:
		return "marginal"
	default:
		return "unsafe"
	}
}

// Margin compares a flutter result against an operating speed.
type Margin struct {
	Operating    float64 // m/s
	Flutter      float64 // m/s, the top of the sweep when nothing was found
	SafetyFactor float64
	Rating       Rating
	// LowerBound is set when no flutter was found, so the factor is a floor.
	LowerBound bool
}

// ComputeMargin rates Flutter/Operating: above 1.5 safe, above 1.2
// marginal, otherwise unsafe.
func ComputeMargin(r *Result, operating float64) (Margin, error) {
	if !(operating > 0) {
		return Margin{}, fmt.Errorf("flutter: operating speed %g must be positive", operating)
	}
	if r == nil || r.Status == Cancelled {
		return Margin{}, fmt.Errorf("flutter: no complete sweep to rate")
	}

	m := Margin{Operating: operating}
	if r.Found() {
		m.Flutter = r.Velocity
	} else {
		m.Flutter = r.Flow.VelocityMax
		if n := len(r.Points); n > 0 {
			m.Flutter = r.Points[n-1].Velocity
		}
		m.LowerBound = true
	}
	m.SafetyFactor = m.Flutter / operating

	switch {
	case m.SafetyFactor > 1.5:
		m.Rating = Safe
	case m.SafetyFactor > 1.2:
		m.Rating = Marginal
	default:
		m.Rating = Unsafe
	}
	return m, nil
}

func (m Margin) String() string {
	bound := ""
	if m.LowerBound {
		bound = ">"
	}
	return fmt.Sprintf("safety factor %s%.2f (%s)", bound, m.SafetyFactor, m.Rating)
}
