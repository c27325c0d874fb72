package modal

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/panelflutter/internal/boundary"
)

// Mode is one natural vibration mode. Shape holds every nodal degree of
// freedom (constrained ones are zero) and is mass-normalized.
type Mode struct {
	Omega float64 // rad/s
	Shape []float64
}

// Hz returns the natural frequency in hertz.
func (m Mode) Hz() float64 { return m.Omega / (2 * math.Pi) }

// Integrals are modal projections over the panel surface:
// Mass[i][j] = ∫φiφj dA and Slope[i][j] = ∫φi ∂φj/∂x dA.
type Integrals struct {
	Mass  [][]float64
	Slope [][]float64
}

// Result is the modal basis of one panel configuration. It is immutable once
// returned by Solve and safe for concurrent use.
type Result struct {
	geom     Geometry
	mesh     Mesh
	bc       boundary.Code
	modes    []Mode
	elem     *element
	stiffFac float64
	freqFac  float64

	integralsOnce sync.Once
	integrals     Integrals
}

func (r *Result) Len() int                { return len(r.modes) }
func (r *Result) Geometry() Geometry      { return r.geom }
func (r *Result) Mesh() Mesh              { return r.mesh }
func (r *Result) Boundary() boundary.Code { return r.bc }

// Mode returns a copy of mode i.
func (r *Result) Mode(i int) Mode {
	m := r.modes[i]
	shape := make([]float64, len(m.Shape))
	copy(shape, m.Shape)
	return Mode{Omega: m.Omega, Shape: shape}
}

// Omegas returns the natural frequencies in rad/s, ascending.
func (r *Result) Omegas() []float64 {
	out := make([]float64, len(r.modes))
	for i, m := range r.modes {
		out[i] = m.Omega
	}
	return out
}

// Factors returns the boundary stiffness and frequency factors applied.
func (r *Result) Factors() (stiffness, frequency float64) { return r.stiffFac, r.freqFac }

func (r *Result) String() string {
	return fmt.Sprintf("%s %gx%g mm, %d modes, f1=%.2f Hz", r.bc, r.geom.Length, r.geom.Width, len(r.modes), r.modes[0].Hz())
}

// locate returns the element containing (x, y) in metres and the local
// element-centred coordinates.
func (r *Result) locate(x, y float64) (ei, ej int, lx, ly float64) {
	dx := 2 * r.elem.hx
	dy := 2 * r.elem.hy
	ei = clamp(int(x/dx), 0, r.mesh.Nx-1)
	ej = clamp(int(y/dy), 0, r.mesh.Ny-1)
	lx = x - (float64(ei)+0.5)*dx
	ly = y - (float64(ej)+0.5)*dy
	return
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// elementDOFs returns the global indices of element (ei, ej) in local order.
func elementDOFs(mesh Mesh, ei, ej int) [elemDOF]int {
	var out [elemDOF]int
	nodes := [4]int{
		ej*(mesh.Nx+1) + ei,
		ej*(mesh.Nx+1) + ei + 1,
		(ej+1)*(mesh.Nx+1) + ei + 1,
		(ej+1)*(mesh.Nx+1) + ei,
	}
	for n, node := range nodes {
		for k := 0; k < 3; k++ {
			out[3*n+k] = 3*node + k
		}
	}
	return out
}

func (r *Result) elementCoefficients(mode, ei, ej int) [elemDOF]float64 {
	idx := elementDOFs(r.mesh, ei, ej)
	var nodal [elemDOF]float64
	shape := r.modes[mode].Shape
	for k, g := range idx {
		nodal[k] = shape[g]
	}
	return r.elem.coefficients(nodal[:])
}

// Deflection evaluates mode at (x, y), metres from the leading-left corner,
// returning the deflection and its chordwise slope.
func (r *Result) Deflection(mode int, x, y float64) (w, dwdx float64) {
	ei, ej, lx, ly := r.locate(x, y)
	a := r.elementCoefficients(mode, ei, ej)
	return dot(basis(lx, ly), a), dot(basisDx(lx, ly), a)
}

// Integrals returns the surface projections of the modes, computed on
// first use with the element quadrature.
func (r *Result) Integrals() Integrals {
	r.integralsOnce.Do(func() {
		n := len(r.modes)
		mass := newSquare(n)
		slope := newSquare(n)
		jac := r.elem.hx * r.elem.hy

		coef := make([][elemDOF]float64, n)
		for ej := 0; ej < r.mesh.Ny; ej++ {
			for ei := 0; ei < r.mesh.Nx; ei++ {
				for m := 0; m < n; m++ {
					coef[m] = r.elementCoefficients(m, ei, ej)
				}
				for gi, xi := range gaussPoints {
					for gj, eta := range gaussPoints {
						wt := gaussWeights[gi] * gaussWeights[gj] * jac
						x, y := xi*r.elem.hx, eta*r.elem.hy
						p, px := basis(x, y), basisDx(x, y)
						for i := 0; i < n; i++ {
							wi := dot(p, coef[i])
							for j := 0; j < n; j++ {
								mass[i][j] += wt * wi * dot(p, coef[j])
								slope[i][j] += wt * wi * dot(px, coef[j])
							}
						}
					}
				}
			}
		}
		r.integrals = Integrals{Mass: mass, Slope: slope}
	})
	return r.integrals
}

func newSquare(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	return out
}
