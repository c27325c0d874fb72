package flutter

import (
	"context"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/modal"
)

// minReducedFrequency keeps k away from zero when a root turns real.
const minReducedFrequency = 1e-4

// pkProblem is the fixed data of one velocity sample.
type pkProblem struct {
	modes    *modal.Result
	backend  aero.Backend
	flow     aero.FlowCondition
	omegas   []float64
	chord    float64
	velocity float64
	q        float64 // dynamic pressure
}

// track runs the PK fixed-point iteration for mode j: guess ω, evaluate
// Q(k) at k = ωc/(2V), solve the state-space eigenproblem and take the
// j-th root in ascending frequency as the next guess.
func (e *Engine) track(ctx context.Context, pb *pkProblem, j int) (Root, error) {
	omega := pb.omegas[j]
	floor := 1e-3 * pb.omegas[j]
	change := math.Inf(1)
	var p complex128

	for it := 1; it <= e.opts.MaxIterations; it++ {
		k := math.Max(omega*pb.chord/(2*pb.velocity), minReducedFrequency)
		q, err := pb.backend.GeneralizedForces(ctx, pb.modes, pb.flow, pb.velocity, k)
		if err != nil {
			return failedRoot(it), err
		}
		roots, err := pb.roots(q, k)
		if err != nil {
			return failedRoot(it), err
		}
		p = roots[min(j, len(roots)-1)]

		next := imag(p)
		change = math.Abs(next-omega) / math.Max(omega, floor)
		if change <= e.opts.Tolerance {
			return newRoot(p, it, true), nil
		}
		omega = next
	}

	return newRoot(p, e.opts.MaxIterations, false), &ConvergenceFailureError{
		Velocity:   pb.velocity,
		Mode:       j,
		Iterations: e.opts.MaxIterations,
		Change:     change,
	}
}

// roots returns the eigenvalues with non-negative imaginary part of
//
//	ẋ = [0 I; −(Ω² + q·Qᴿ) −q·c·Qᴵ/(2kV)]·x
//
// sorted by frequency. Real roots tie at zero frequency and go in
// descending real part, so a diverging mode keeps its growing root.
func (pb *pkProblem) roots(q *mat.CDense, k float64) ([]complex128, error) {
	n := len(pb.omegas)
	a := mat.NewDense(2*n, 2*n, nil)
	damp := pb.q * pb.chord / (2 * k * pb.velocity)
	for i := 0; i < n; i++ {
		a.Set(i, n+i, 1)
		for j := 0; j < n; j++ {
			qij := q.At(i, j)
			stiff := pb.q * real(qij)
			if i == j {
				stiff += pb.omegas[i] * pb.omegas[i]
			}
			a.Set(n+i, j, -stiff)
			a.Set(n+i, n+j, -damp*imag(qij))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, &aero.NumericalSingularityError{Backend: "pk", ReducedFrequency: k, Condition: math.Inf(1)}
	}
	values := eig.Values(nil)

	out := make([]complex128, 0, n)
	for _, v := range values {
		if imag(v) >= 0 {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if imag(out[a]) != imag(out[b]) {
			return imag(out[a]) < imag(out[b])
		}
		return real(out[a]) > real(out[b])
	})
	return out, nil
}

func newRoot(p complex128, iterations int, converged bool) Root {
	g := 0.0
	if mag := cmplx.Abs(p); mag > 0 {
		g = 2 * real(p) / mag
	}
	return Root{
		Frequency:  imag(p) / (2 * math.Pi),
		Damping:    g,
		Converged:  converged,
		Iterations: iterations,
	}
}

func failedRoot(iterations int) Root {
	return Root{Frequency: math.NaN(), Damping: math.NaN(), Iterations: iterations}
}
