package flutter

import (
	"fmt"
	"math"

	"github.com/san-kum/panelflutter/internal/aero"
)

type Status int

const (
	// NoFlutter means no damping crossing occurred inside the sweep.
	NoFlutter Status = iota
	Found
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Found:
		return "flutter"
	case Cancelled:
		return "cancelled"
	default:
		return "no instability in range"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case Found:
		return []byte("found"), nil
	case Cancelled:
		return []byte("cancelled"), nil
	}
	return []byte("none"), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "found":
		*s = Found
	case "cancelled":
		*s = Cancelled
	case "none", "":
		*s = NoFlutter
	default:
		return fmt.Errorf("flutter: unknown status %q", text)
	}
	return nil
}

// Root is one mode's aeroelastic eigenvalue at one velocity.
type Root struct {
	Frequency  float64 `json:"frequency"` // Hz
	Damping    float64 `json:"damping"`   // g = 2σ/|p|, positive is unstable
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

func (r Root) valid() bool {
	return r.Converged && !math.IsNaN(r.Damping) && !math.IsNaN(r.Frequency)
}

// Point is one sweep sample.
type Point struct {
	Velocity        float64 `json:"velocity"`
	DynamicPressure float64 `json:"dynamic_pressure"`
	Roots           []Root  `json:"roots"`
	Err             error   `json:"-"`
}

func (p Point) Failed() bool { return p.Err != nil }

// Result is the outcome of a sweep. Points are ordered by velocity.
type Result struct {
	Status     Status             `json:"status"`
	Velocity   float64            `json:"velocity,omitempty"`  // m/s
	Frequency  float64            `json:"frequency,omitempty"` // Hz
	Mode       int                `json:"mode"`
	BelowRange bool               `json:"below_range,omitempty"`
	Backend    string             `json:"backend"`
	Flow       aero.FlowCondition `json:"flow"`
	Points     []Point            `json:"points"`
}

func (r *Result) Found() bool { return r.Status == Found }

// Modes returns the number of tracked modes.
func (r *Result) Modes() int {
	for _, p := range r.Points {
		if len(p.Roots) > 0 {
			return len(p.Roots)
		}
	}
	return 0
}

// Curves returns the V-f and V-g diagrams: velocities and, per mode, the
// frequency and damping at each velocity. Failed roots are NaN.
func (r *Result) Curves() (velocity []float64, frequency, damping [][]float64) {
	n := r.Modes()
	velocity = make([]float64, len(r.Points))
	frequency = make([][]float64, n)
	damping = make([][]float64, n)
	for m := 0; m < n; m++ {
		frequency[m] = make([]float64, len(r.Points))
		damping[m] = make([]float64, len(r.Points))
	}
	for i, p := range r.Points {
		velocity[i] = p.Velocity
		for m := 0; m < n; m++ {
			if m >= len(p.Roots) {
				frequency[m][i], damping[m][i] = math.NaN(), math.NaN()
				continue
			}
			frequency[m][i] = p.Roots[m].Frequency
			damping[m][i] = p.Roots[m].Damping
		}
	}
	return velocity, frequency, damping
}

// Errors lists the per-sample failures in velocity order.
func (r *Result) Errors() []error {
	var out []error
	for _, p := range r.Points {
		if p.Err != nil {
			out = append(out, p.Err)
		}
	}
	return out
}

func (r *Result) String() string {
	switch r.Status {
	case Found:
		s := fmt.Sprintf("flutter at %.1f m/s, %.1f Hz (mode %d)", r.Velocity, r.Frequency, r.Mode+1)
		if r.BelowRange {
			s += ", unstable at the lowest sampled velocity"
		}
		return s
	case Cancelled:
		return fmt.Sprintf("cancelled after %d samples", len(r.Points))
	default:
		return fmt.Sprintf("no instability in range %g-%g m/s", r.Flow.VelocityMin, r.Flow.VelocityMax)
	}
}
