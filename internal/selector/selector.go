// Package selector picks the aerodynamic backend for a flight condition,
// ranks the backends for a panel, and compares sweeps run with different
// backends.
package selector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/boundary"
)

var ErrNoBackend = errors.New("selector: backend not available")

type Method uint8

const (
	Auto Method = iota
	Piston
	DoubletLattice
	External
)

var methodNames = [...]string{"auto", "piston", "dlm", "external"}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("method(%d)", uint8(m))
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "piston", "piston_theory":
		return Piston, nil
	case "dlm", "doublet", "doublet_lattice":
		return DoubletLattice, nil
	case "external", "ext":
		return External, nil
	default:
		return Auto, fmt.Errorf("invalid method: %q", s)
	}
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MethodFor is the regime rule: piston theory from Mach 1.2, the doublet
// lattice below.
func MethodFor(mach float64) Method {
	if mach >= aero.PistonMinMach {
		return Piston
	}
	return DoubletLattice
}

// Factory hands out backend instances.
type Factory interface {
	Backend(m Method) (aero.Backend, error)
}

// Builtin serves one shared instance per method so repeated analyses
// reuse the doublet lattice tables. External is nil unless configured.
type Builtin struct {
	Piston   *aero.Piston
	DLM      *aero.DoubletLattice
	External aero.Backend
}

func NewBuiltin() *Builtin {
	return &Builtin{Piston: aero.NewPiston(), DLM: aero.NewDoubletLattice()}
}

func (b *Builtin) Backend(m Method) (aero.Backend, error) {
	switch m {
	case Piston:
		if b.Piston != nil {
			return b.Piston, nil
		}
	case DoubletLattice:
		if b.DLM != nil {
			return b.DLM, nil
		}
	case External:
		if b.External != nil {
			return b.External, nil
		}
	default:
		return nil, fmt.Errorf("selector: cannot build %s directly", m)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoBackend, m)
}

type Selection struct {
	Method     Method
	Backend    aero.Backend
	Overridden bool
	// Warning is set when an override contradicts the flow regime. The
	// backend still enforces its own Mach range during the sweep.
	Warning string
	// Notes are boundary condition advisories.
	Notes []string
}

type Selector struct {
	factory Factory
}

// New returns a Selector over f, or over a fresh Builtin when f is nil.
func New(f Factory) *Selector {
	if f == nil {
		f = NewBuiltin()
	}
	return &Selector{factory: f}
}

func (s *Selector) Factory() Factory { return s.factory }

// Choose applies the regime rule unless override is set. An override is
// never rejected here.
func (s *Selector) Choose(flow aero.FlowCondition, bc boundary.Code, override Method) (Selection, error) {
	notes, err := boundary.Advise(bc, 0)
	if err != nil {
		return Selection{}, err
	}

	regime := MethodFor(flow.Mach)
	m := regime
	if override != Auto {
		m = override
	}
	b, err := s.factory.Backend(m)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Method: m, Backend: b, Overridden: override != Auto, Notes: notes}
	if sel.Overridden && !aero.Supports(b, flow.Mach) {
		lo, hi := b.MachRange()
		sel.Warning = fmt.Sprintf("%s requested at Mach %.2f outside its range [%g, %g); the regime default is %s",
			m, flow.Mach, lo, hi, regime)
	}
	return sel, nil
}

var defaultSelector = New(nil)

// Choose selects from a process-wide Builtin factory.
func Choose(flow aero.FlowCondition, bc boundary.Code, override Method) (Selection, error) {
	return defaultSelector.Choose(flow, bc, override)
}
