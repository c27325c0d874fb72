// Package boundary holds the immutable table of supported panel edge
// constraints and their correction factors.
package boundary

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCode is the sentinel behind UnknownBoundaryConditionError.
var ErrUnknownCode = errors.New("boundary: unknown boundary condition")

type UnknownBoundaryConditionError struct {
	Code string
}

func (e *UnknownBoundaryConditionError) Error() string {
	return fmt.Sprintf("%v %q (supported: %s)", ErrUnknownCode, e.Code, strings.Join(Names(), ", "))
}

func (e *UnknownBoundaryConditionError) Unwrap() error { return ErrUnknownCode }

// Code identifies one of the supported edge-constraint combinations. Most
// codes spell the leading (x=0), trailing (x=L), left (y=0) and right (y=W)
// edges in that order, but not all do: CFCF frees the sides, and SSSF and
// CCCF free the trailing edge. Each table row carries its edges explicitly.
type Code uint8

const (
	SSSS Code = iota
	CCCC
	CFFF
	CSSS
	CCSS
	CFCF
	SSSF
	CCCF
	SFSS
	CFCC
	FFFF
	numCodes
)

// Constraint is the restraint applied along one edge.
type Constraint uint8

const (
	Free Constraint = iota
	Simple
	Clamped
)

func (c Constraint) String() string {
	switch c {
	case Free:
		return "free"
	case Simple:
		return "simply-supported"
	case Clamped:
		return "clamped"
	}
	return fmt.Sprintf("constraint(%d)", uint8(c))
}

// Edge indices into [Edges].
const (
	Leading = iota
	Trailing
	Left
	Right
)

type Tendency uint8

const (
	Low Tendency = iota
	Medium
	High
)

func (t Tendency) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("tendency(%d)", uint8(t))
}

// Entry is one row of the table.
type Entry struct {
	Code        Code
	Name        string
	Stiffness   float64
	Frequency   float64
	Tendency    Tendency
	Description string
	Edges       [4]Constraint // Leading, Trailing, Left, Right
}

var table = [numCodes]Entry{
	SSSS: {SSSS, "SSSS", 1.00, 1.000, Medium, "simply supported on all edges", [4]Constraint{Simple, Simple, Simple, Simple}},
	CCCC: {CCCC, "CCCC", 2.56, 1.596, Low, "clamped on all edges", [4]Constraint{Clamped, Clamped, Clamped, Clamped}},
	CFFF: {CFFF, "CFFF", 0.25, 0.582, High, "cantilever, clamped leading edge", [4]Constraint{Clamped, Free, Free, Free}},
	CSSS: {CSSS, "CSSS", 1.80, 1.248, Medium, "clamped leading edge, others simply supported", [4]Constraint{Clamped, Simple, Simple, Simple}},
	CCSS: {CCSS, "CCSS", 2.00, 1.435, Medium, "clamped leading and trailing edges, simply supported sides", [4]Constraint{Clamped, Clamped, Simple, Simple}},
	CFCF: {CFCF, "CFCF", 1.50, 1.000, Medium, "clamped leading and trailing edges, free sides", [4]Constraint{Clamped, Clamped, Free, Free}},
	SSSF: {SSSF, "SSSF", 0.70, 0.895, High, "simply supported leading edge and sides, trailing edge free", [4]Constraint{Simple, Free, Simple, Simple}},
	CCCF: {CCCF, "CCCF", 1.60, 1.127, High, "clamped leading edge and sides, trailing edge free", [4]Constraint{Clamped, Free, Clamped, Clamped}},
	SFSS: {SFSS, "SFSS", 0.70, 0.895, High, "simply supported, trailing edge free", [4]Constraint{Simple, Free, Simple, Simple}},
	CFCC: {CFCC, "CFCC", 1.60, 1.127, High, "clamped, trailing edge free", [4]Constraint{Clamped, Free, Clamped, Clamped}},
	FFFF: {FFFF, "FFFF", 0.05, 1.000, High, "free on all edges, rigid-body modes present", [4]Constraint{Free, Free, Free, Free}},
}

func (c Code) Valid() bool { return c < numCodes }

func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("code(%d)", uint8(c))
	}
	return table[c].Name
}

// Parse accepts a four-letter code, case-insensitive.
func Parse(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, e := range table {
		if e.Name == name {
			return e.Code, nil
		}
	}
	return 0, &UnknownBoundaryConditionError{Code: s}
}

func (c Code) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, &UnknownBoundaryConditionError{Code: c.String()}
	}
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Lookup returns the table row for c.
func Lookup(c Code) (Entry, error) {
	if !c.Valid() {
		return Entry{}, &UnknownBoundaryConditionError{Code: c.String()}
	}
	return table[c], nil
}

// FactorsFor returns the stiffness factor, frequency factor and flutter tendency of c.
func FactorsFor(c Code) (stiffness, frequency float64, tendency Tendency, err error) {
	e, err := Lookup(c)
	if err != nil {
		return 0, 0, 0, err
	}
	return e.Stiffness, e.Frequency, e.Tendency, nil
}

// Edges returns the per-edge constraints, indexed by Leading..Right.
func Edges(c Code) ([4]Constraint, error) {
	e, err := Lookup(c)
	if err != nil {
		return [4]Constraint{}, err
	}
	return e.Edges, nil
}

// Codes lists every supported code in table order.
func Codes() []Code {
	out := make([]Code, numCodes)
	for i := range out {
		out[i] = Code(i)
	}
	return out
}

func Names() []string {
	out := make([]string, numCodes)
	for i, e := range table {
		out[i] = e.Name
	}
	return out
}
