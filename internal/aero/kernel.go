package aero

import (
	"math"
	"math/cmplx"
)

// Subsonic doublet-lattice influence after Albano and Rodden. Each box
// carries a uniform pressure jump Δcp on a doublet line along its quarter
// chord, and the normalwash w/V it induces at a receiving point is
//
//	w/V = Δcp·Δx/(8π) · ∫ K(x₀, y₀) / y₀² dη
//
// over the doublet line, with the planar kernel K of Landahl. K splits into
// its steady part, whose integral is the horseshoe vortex of the vortex
// lattice, and an oscillatory increment that vanishes at ω = 0 and is
// smooth enough to integrate from a parabola through three points on the
// line. The steady part is the incompressible horseshoe evaluated at the
// Prandtl–Glauert stretched distance x₀/β.
//
// Signs follow a positive Δcp lifting the surface: it induces downwash
// (w < 0) behind its doublet line.

// laschka is the exponential fit 1 − u/√(1+u²) ≈ Σ aₙ·exp(−n·c·u), n = 1…11,
// used to evaluate Landahl's I₁ integral in closed form.
var laschka = [...]float64{
	0.24186198, -2.7918027, 24.991079, -111.59196, 271.43549, -305.75288,
	-41.18363, 545.98537, -644.78155, 328.72755, -64.279511,
}

const laschkaC = 0.372

// i1 is I₁(u, k) = ∫ᵤ^∞ exp(−iku)/(1+u²)^{3/2} du.
func i1(u, k float64) complex128 {
	if u >= 0 {
		return i1Positive(u, k)
	}
	zero := i1Positive(0, k)
	mirror := i1Positive(-u, k)
	return complex(2*real(zero)-real(mirror), imag(mirror))
}

func i1Positive(u, k float64) complex128 {
	var i0 complex128
	for n, a := range laschka {
		nc := float64(n+1) * laschkaC
		i0 += complex(a*math.Exp(-nc*u)/(nc*nc+k*k), 0) * complex(nc, -k)
	}
	f := complex(1-u/math.Sqrt(1+u*u), 0)
	return cmplx.Exp(complex(0, -k*u)) * (f - complex(0, k)*i0)
}

// incrementalKernel is Landahl's planar kernel less its steady value,
// K₁·exp(−iω̄x₀) − K₁₀, for a receiving point x₀ downstream and y₀ aside of
// the sending point. omega is ω/V.
func incrementalKernel(x0, y0, omega, mach float64) complex128 {
	beta2 := 1 - mach*mach
	r := math.Abs(y0)
	lag := cmplx.Exp(complex(0, -omega*x0))
	if r <= 1e-9*math.Abs(x0) {
		// On the sending strip: K₁ tends to −2 downstream and 0 upstream.
		if x0 > 0 {
			return -2 * (lag - 1)
		}
		return 0
	}

	big := math.Sqrt(x0*x0 + beta2*r*r)
	k1 := omega * r
	u1 := (mach*big - x0) / (beta2 * r)
	k := -i1(u1, k1) - complex(mach*r/(big*math.Sqrt(1+u1*u1)), 0)*cmplx.Exp(complex(0, -k1*u1))
	steady := -1 - x0/big
	return k*lag - complex(steady, 0)
}

// horseshoe is the coplanar normalwash factor of a unit horseshoe vortex
// whose bound leg spans (0, −e)…(0, e) and whose trailing legs run to
// x = +∞, at (x0, y). Neither x0 nor |y| ∓ e may be zero.
func horseshoe(x0, y, e float64) float64 {
	r1 := math.Hypot(x0, y+e)
	r2 := math.Hypot(x0, y-e)
	bound := -((y+e)/r1 - (y-e)/r2) / x0
	return bound + (1+x0/r2)/(y-e) - (1+x0/r1)/(y+e)
}

// influence is the normalwash w/V at (x0, y) from a unit Δcp on a box of
// chord dx and semi-span e centred on the origin.
func influence(x0, y, e, dx, omega, mach float64) complex128 {
	beta := math.Sqrt(1 - mach*mach)
	scale := dx / (8 * math.Pi)
	d := complex(scale*horseshoe(x0/beta, y, e), 0)
	if omega == 0 {
		return d
	}

	// Parabola P(η) = Aη² + Bη + C through the increments at η = −e, 0, e.
	left := incrementalKernel(x0, y+e, omega, mach)
	mid := incrementalKernel(x0, y, omega, mach)
	right := incrementalKernel(x0, y-e, omega, mach)
	c := mid
	b := (right - left) / complex(2*e, 0)
	a := (left - 2*mid + right) / complex(2*e*e, 0)

	// ∫ P(η)/(y−η)² dη over −e…e, finite part on the sending strip.
	cy := complex(y, 0)
	integral := (a*cy*cy+b*cy+c)*complex(2*e/(y*y-e*e), 0) +
		(a*cy+b/2)*complex(math.Log((y-e)*(y-e)/((y+e)*(y+e))), 0) +
		a*complex(2*e, 0)
	return d - complex(scale, 0)*integral
}
