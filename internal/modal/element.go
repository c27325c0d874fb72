package modal

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Rectangular 12-DOF bending element. Each node carries w, ∂w/∂x, ∂w/∂y and
// the deflection is the cubic polynomial
//
//	w = a1 + a2x + a3y + a4x² + a5xy + a6y² + a7x³ + a8x²y + a9xy² + a10y³ + a11x³y + a12xy³
//
// in coordinates centred on the element. Nodal values d relate to the
// coefficients by d = C·a, so every element matrix is Cᵀ⁻¹·(∫…)·C⁻¹.

const elemDOF = 12

var (
	gaussPoints  = [4]float64{-0.8611363115940526, -0.3399810435848563, 0.3399810435848563, 0.8611363115940526}
	gaussWeights = [4]float64{0.3478548451374538, 0.6521451548625461, 0.6521451548625461, 0.3478548451374538}
)

func basis(x, y float64) [elemDOF]float64 {
	return [elemDOF]float64{1, x, y, x * x, x * y, y * y, x * x * x, x * x * y, x * y * y, y * y * y, x * x * x * y, x * y * y * y}
}

func basisDx(x, y float64) [elemDOF]float64 {
	return [elemDOF]float64{0, 1, 0, 2 * x, y, 0, 3 * x * x, 2 * x * y, y * y, 0, 3 * x * x * y, y * y * y}
}

func basisDy(x, y float64) [elemDOF]float64 {
	return [elemDOF]float64{0, 0, 1, 0, x, 2 * y, 0, x * x, 2 * x * y, 3 * y * y, x * x * x, 3 * x * y * y}
}

// curvatures returns the rows of w_xx, w_yy and 2w_xy.
func curvatures(x, y float64) [3][elemDOF]float64 {
	return [3][elemDOF]float64{
		{0, 0, 0, 2, 0, 0, 6 * x, 2 * y, 0, 0, 6 * x * y, 0},
		{0, 0, 0, 0, 0, 2, 0, 0, 2 * x, 6 * y, 0, 6 * x * y},
		{0, 0, 0, 0, 2, 0, 0, 4 * x, 4 * y, 0, 6 * x * x, 6 * y * y},
	}
}

// element holds the matrices shared by every element of a uniform mesh.
type element struct {
	hx, hy float64 // half sizes, m
	cinv   *mat.Dense
	k      *mat.Dense
	m      *mat.Dense
}

// nodeOffsets orders nodes counter-clockwise from the (-x, -y) corner.
var nodeOffsets = [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

func newElement(dx, dy float64, bending [3][3]float64, arealDensity float64) (*element, error) {
	e := &element{hx: dx / 2, hy: dy / 2}

	c := mat.NewDense(elemDOF, elemDOF, nil)
	for n, off := range nodeOffsets {
		x, y := off[0]*e.hx, off[1]*e.hy
		p, px, py := basis(x, y), basisDx(x, y), basisDy(x, y)
		c.SetRow(3*n, p[:])
		c.SetRow(3*n+1, px[:])
		c.SetRow(3*n+2, py[:])
	}
	e.cinv = mat.NewDense(elemDOF, elemDOF, nil)
	if err := e.cinv.Inverse(c); err != nil {
		return nil, fmt.Errorf("modal: element interpolation matrix: %w", err)
	}

	kp := mat.NewDense(elemDOF, elemDOF, nil)
	mp := mat.NewDense(elemDOF, elemDOF, nil)
	jac := e.hx * e.hy
	for i, xi := range gaussPoints {
		for j, eta := range gaussPoints {
			w := gaussWeights[i] * gaussWeights[j] * jac
			x, y := xi*e.hx, eta*e.hy
			b := curvatures(x, y)
			p := basis(x, y)
			for r := 0; r < elemDOF; r++ {
				for s := 0; s < elemDOF; s++ {
					sum := 0.0
					for a := 0; a < 3; a++ {
						for bb := 0; bb < 3; bb++ {
							sum += b[a][r] * bending[a][bb] * b[bb][s]
						}
					}
					kp.Set(r, s, kp.At(r, s)+w*sum)
					mp.Set(r, s, mp.At(r, s)+w*arealDensity*p[r]*p[s])
				}
			}
		}
	}

	e.k = project(e.cinv, kp)
	e.m = project(e.cinv, mp)
	return e, nil
}

// project computes C⁻ᵀ·A·C⁻¹.
func project(cinv, a *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(a, cinv)
	out.Mul(cinv.T(), &tmp)
	return &out
}

// coefficients maps nodal values to polynomial coefficients.
func (e *element) coefficients(nodal []float64) [elemDOF]float64 {
	var a [elemDOF]float64
	for i := 0; i < elemDOF; i++ {
		s := 0.0
		for j := 0; j < elemDOF; j++ {
			s += e.cinv.At(i, j) * nodal[j]
		}
		a[i] = s
	}
	return a
}

func dot(p, a [elemDOF]float64) float64 {
	s := 0.0
	for i := range p {
		s += p[i] * a[i]
	}
	return s
}
