package material

import (
	"errors"
	"fmt"
	"math"
)

// Material is the plate-level view the structural solver needs.
type Material interface {
	Validate() error
	// BendingStiffness returns the 3x3 bending block D in N·m.
	BendingStiffness() ([3][3]float64, error)
	// ArealDensity returns mass per unit area in kg/m².
	ArealDensity() float64
	// Thickness returns the total thickness in mm.
	Thickness() float64
}

// Isotropic is a homogeneous plate.
type Isotropic struct {
	Density     float64 `yaml:"density" json:"density"`
	Modulus     float64 `yaml:"modulus" json:"modulus"`
	Poisson     float64 `yaml:"poisson" json:"poisson"`
	ThicknessMM float64 `yaml:"thickness" json:"thickness"`
}

func (m Isotropic) Validate() error {
	switch {
	case !(m.Density > 0):
		return &PropertyError{Property: "density", Value: m.Density}
	case !(m.Modulus > 0):
		return &PropertyError{Property: "modulus", Value: m.Modulus}
	case !(m.Poisson > 0 && m.Poisson < 0.5):
		return &PropertyError{Property: "poisson", Value: m.Poisson}
	case !(m.ThicknessMM > 0):
		return &PropertyError{Property: "thickness", Value: m.ThicknessMM}
	}
	return nil
}

func (m Isotropic) Thickness() float64 { return m.ThicknessMM }

func (m Isotropic) ArealDensity() float64 {
	return m.Density * m.ThicknessMM * 1e-3
}

// FlexuralRigidity is E·t³/(12(1−ν²)) in N·m.
func (m Isotropic) FlexuralRigidity() float64 {
	t := m.ThicknessMM * 1e-3
	return m.Modulus * t * t * t / (12 * (1 - m.Poisson*m.Poisson))
}

func (m Isotropic) BendingStiffness() ([3][3]float64, error) {
	if err := m.Validate(); err != nil {
		return [3][3]float64{}, err
	}
	d := m.FlexuralRigidity()
	nu := m.Poisson
	return [3][3]float64{
		{d, nu * d, 0},
		{nu * d, d, 0},
		{0, 0, d * (1 - nu) / 2},
	}, nil
}

// AsPly expresses the material as a single 0° ply with equal in-plane moduli.
func (m Isotropic) AsPly() Ply {
	return Ply{
		Angle:       0,
		ThicknessMM: m.ThicknessMM,
		E1:          m.Modulus,
		E2:          m.Modulus,
		G12:         m.Modulus / (2 * (1 + m.Poisson)),
		Nu12:        m.Poisson,
		Density:     m.Density,
	}
}

// EffectiveIsotropicStiffness returns the flexural rigidity of an isotropic
// material. Laminates have no single scalar rigidity and are rejected.
func EffectiveIsotropicStiffness(m Material) (float64, error) {
	iso, ok := m.(Isotropic)
	if !ok {
		if p, isPtr := m.(*Isotropic); isPtr && p != nil {
			iso, ok = *p, true
		}
	}
	if !ok {
		return 0, fmt.Errorf("material: effective isotropic stiffness needs an isotropic material, got %T", m)
	}
	if err := iso.Validate(); err != nil {
		return 0, err
	}
	return iso.FlexuralRigidity(), nil
}

// Ply is one orthotropic lamina. Angle is degrees from the panel x axis.
type Ply struct {
	Angle       float64 `yaml:"angle" json:"angle"`
	ThicknessMM float64 `yaml:"thickness" json:"thickness"`
	E1          float64 `yaml:"e1" json:"e1"`
	E2          float64 `yaml:"e2" json:"e2"`
	G12         float64 `yaml:"g12" json:"g12"`
	Nu12        float64 `yaml:"nu12" json:"nu12"`
	Density     float64 `yaml:"density" json:"density"`
}

func (p Ply) validate(idx int) error {
	switch {
	case !(p.ThicknessMM > 0):
		return &InvalidLaminateError{Ply: idx, Reason: fmt.Sprintf("thickness must be positive, got %g", p.ThicknessMM)}
	case !(p.E1 > 0) || !(p.E2 > 0) || !(p.G12 > 0):
		return &InvalidLaminateError{Ply: idx, Reason: "moduli must be positive"}
	case !(p.Nu12 > 0 && p.Nu12 < 0.5):
		return &InvalidLaminateError{Ply: idx, Reason: fmt.Sprintf("poisson ratio %g outside (0, 0.5)", p.Nu12)}
	case !(p.Density > 0):
		return &InvalidLaminateError{Ply: idx, Reason: "density must be positive"}
	case math.IsNaN(p.Angle) || math.IsInf(p.Angle, 0):
		return &InvalidLaminateError{Ply: idx, Reason: "angle is not finite"}
	}
	return nil
}

// reducedStiffness is the plane-stress Q matrix in ply axes.
func (p Ply) reducedStiffness() (q11, q12, q22, q66 float64) {
	nu21 := p.Nu12 * p.E2 / p.E1
	den := 1 - p.Nu12*nu21
	q11 = p.E1 / den
	q22 = p.E2 / den
	q12 = p.Nu12 * p.E2 / den
	q66 = p.G12
	return
}

// Transformed returns Q̄, the ply stiffness rotated into laminate axes.
func (p Ply) Transformed() [3][3]float64 {
	q11, q12, q22, q66 := p.reducedStiffness()
	th := p.Angle * math.Pi / 180
	m, n := math.Cos(th), math.Sin(th)
	m2, n2 := m*m, n*n
	m4, n4 := m2*m2, n2*n2
	mn2 := m2 * n2

	b11 := q11*m4 + 2*(q12+2*q66)*mn2 + q22*n4
	b22 := q11*n4 + 2*(q12+2*q66)*mn2 + q22*m4
	b12 := (q11+q22-4*q66)*mn2 + q12*(m4+n4)
	b66 := (q11+q22-2*q12-2*q66)*mn2 + q66*(m4+n4)
	b16 := (q11-q12-2*q66)*m2*m*n + (q12-q22+2*q66)*m*n2*n
	b26 := (q11-q12-2*q66)*m*n2*n + (q12-q22+2*q66)*m2*m*n

	return [3][3]float64{
		{b11, b12, b16},
		{b12, b22, b26},
		{b16, b26, b66},
	}
}

// SymmetricLayup mirrors half about the mid-plane: [0,45] becomes [0,45,45,0].
func SymmetricLayup(base Ply, half ...float64) *Laminate {
	plies := make([]Ply, 0, 2*len(half))
	for _, a := range half {
		p := base
		p.Angle = a
		plies = append(plies, p)
	}
	for i := len(half) - 1; i >= 0; i-- {
		p := base
		p.Angle = half[i]
		plies = append(plies, p)
	}
	return NewLaminate(plies...)
}

// IsInvalid reports whether err comes from material validation.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidLaminate) || errors.Is(err, ErrInvalidMaterial)
}
