package modal

import "fmt"

// Geometry is a rectangular panel. Length runs with the flow.
type Geometry struct {
	Length float64 `yaml:"length" json:"length"` // mm
	Width  float64 `yaml:"width" json:"width"`   // mm
	Nx     int     `yaml:"nx" json:"nx"`
	Ny     int     `yaml:"ny" json:"ny"`
}

// Mesh is the element count along each axis.
type Mesh struct {
	Nx int `json:"nx"`
	Ny int `json:"ny"`
}

func (g Geometry) Mesh() Mesh { return Mesh{Nx: g.Nx, Ny: g.Ny} }

func (g Geometry) Validate() error {
	if err := g.validateSize(); err != nil {
		return err
	}
	return g.Mesh().validate()
}

func (g Geometry) validateSize() error {
	if !(g.Length > 0) || !(g.Width > 0) {
		return fmt.Errorf("%w: dimensions %gx%g mm must be positive", ErrInvalidGeometry, g.Length, g.Width)
	}
	return nil
}

func (m Mesh) validate() error {
	if m.Nx < 1 || m.Ny < 1 {
		return fmt.Errorf("%w: element counts %dx%d must be at least 1", ErrInvalidGeometry, m.Nx, m.Ny)
	}
	return nil
}

// Aspect is length over width.
func (g Geometry) Aspect() float64 {
	if g.Width == 0 {
		return 0
	}
	return g.Length / g.Width
}

// Chord and Span are the panel dimensions in metres.
func (g Geometry) Chord() float64 { return g.Length * 1e-3 }
func (g Geometry) Span() float64  { return g.Width * 1e-3 }

// Warnings flags shapes outside the range the element and the aerodynamic
// boxes were sized for. They are advisory only.
func (g Geometry) Warnings() []string {
	var out []string
	if ar := g.Aspect(); ar > 5 || (ar > 0 && ar < 0.2) {
		out = append(out, fmt.Sprintf("aspect ratio %.2f outside [0.2, 5]", ar))
	}
	if g.Nx > 0 && g.Ny > 0 {
		ex := g.Length / float64(g.Nx)
		ey := g.Width / float64(g.Ny)
		if ex/ey > 4 || ey/ex > 4 {
			out = append(out, fmt.Sprintf("element aspect ratio %.1f distorts bending modes", ex/ey))
		}
	}
	return out
}
