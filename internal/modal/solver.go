// Package modal extracts the natural frequencies and mode shapes of a
// rectangular panel from a plate bending finite-element model.
package modal

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/material"
)

// DefaultModes is the retained mode count used when callers pass zero.
const DefaultModes = 6

const (
	// rigidTolerance is the smallest eigenvalue, relative to the largest,
	// still accepted as positive.
	rigidTolerance = 1e-11
	// tieTolerance groups frequencies treated as numerically equal.
	tieTolerance = 1e-8
)

// Solve builds the constrained stiffness and mass matrices for the panel,
// solves K·φ = ω²·M·φ and returns the lowest modes ascending. Only the
// planform of geom is used; mesh sets the element counts. The boundary
// condition's factors scale the final model: K by the stiffness factor s and
// M by s/f², so frequencies move by f and modal stiffness by s.
func Solve(geom Geometry, m material.Material, bc boundary.Code, mesh Mesh, modes int) (*Result, error) {
	if modes <= 0 {
		modes = DefaultModes
	}
	if err := geom.validateSize(); err != nil {
		return nil, err
	}
	if err := mesh.validate(); err != nil {
		return nil, err
	}
	geom.Nx, geom.Ny = mesh.Nx, mesh.Ny
	entry, err := boundary.Lookup(bc)
	if err != nil {
		return nil, err
	}
	edges, _ := boundary.Edges(bc)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	bending, err := m.BendingStiffness()
	if err != nil {
		return nil, err
	}

	dx := geom.Chord() / float64(mesh.Nx)
	dy := geom.Span() / float64(mesh.Ny)
	elem, err := newElement(dx, dy, bending, m.ArealDensity())
	if err != nil {
		return nil, err
	}

	ndof := 3 * (mesh.Nx + 1) * (mesh.Ny + 1)
	free := freeDOFs(mesh, edges)
	if len(free) < modes {
		return nil, &IllConditionedModelError{FreeDOF: len(free), Requested: modes}
	}

	kGlobal, mGlobal := assemble(mesh, elem, ndof)
	kff := reduce(kGlobal, free)
	mff := reduce(mGlobal, free)

	var mChol mat.Cholesky
	if ok := mChol.Factorize(mff); !ok {
		return nil, &NonPositiveDefiniteError{Matrix: "M", Reason: "Cholesky factorization failed"}
	}
	var kChol mat.Cholesky
	if ok := kChol.Factorize(kff); !ok {
		return nil, &NonPositiveDefiniteError{Matrix: "K", Reason: "Cholesky factorization failed"}
	}

	// Reduce to the standard problem A·y = λ·y with A = L⁻¹·K·L⁻ᵀ.
	var l, linv mat.TriDense
	mChol.LTo(&l)
	if err := linv.InverseTri(&l); err != nil {
		return nil, &NonPositiveDefiniteError{Matrix: "M", Reason: err.Error()}
	}
	var tmp, a mat.Dense
	tmp.Mul(&linv, kff)
	a.Mul(&tmp, linv.T())
	n := len(free)
	aSym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			aSym.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(aSym, true); !ok {
		return nil, &NonPositiveDefiniteError{Matrix: "K", Reason: "eigen decomposition did not converge"}
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	if values[0] <= rigidTolerance*math.Abs(values[n-1]) {
		return nil, &NonPositiveDefiniteError{Matrix: "K", Reason: "zero-energy (rigid-body) modes remain after constraints"}
	}

	orthogonalizeTies(values, &vecs, modes)

	var phi mat.Dense
	phi.Mul(linv.T(), &vecs)

	scale := entry.Frequency / math.Sqrt(entry.Stiffness)
	res := &Result{
		geom:     geom,
		mesh:     mesh,
		bc:       bc,
		elem:     elem,
		stiffFac: entry.Stiffness,
		freqFac:  entry.Frequency,
		modes:    make([]Mode, modes),
	}
	for k := 0; k < modes; k++ {
		shape := make([]float64, ndof)
		for i, g := range free {
			shape[g] = phi.At(i, k) * scale
		}
		normalizeSign(shape)
		res.modes[k] = Mode{
			Omega: entry.Frequency * math.Sqrt(values[k]),
			Shape: shape,
		}
	}
	return res, nil
}

// freeDOFs lists the unconstrained global degrees of freedom. Simply
// supported edges fix w and the slope along the edge; clamped edges fix all
// three nodal values.
func freeDOFs(mesh Mesh, edges [4]boundary.Constraint) []int {
	const (
		w = iota
		wx
		wy
	)
	fixed := make(map[int]bool)
	fix := func(node int, comps ...int) {
		for _, c := range comps {
			fixed[3*node+c] = true
		}
	}
	apply := func(node int, c boundary.Constraint, tangent int) {
		switch c {
		case boundary.Simple:
			fix(node, w, tangent)
		case boundary.Clamped:
			fix(node, w, wx, wy)
		}
	}

	for j := 0; j <= mesh.Ny; j++ {
		apply(j*(mesh.Nx+1), edges[boundary.Leading], wy)
		apply(j*(mesh.Nx+1)+mesh.Nx, edges[boundary.Trailing], wy)
	}
	for i := 0; i <= mesh.Nx; i++ {
		apply(i, edges[boundary.Left], wx)
		apply(mesh.Ny*(mesh.Nx+1)+i, edges[boundary.Right], wx)
	}

	ndof := 3 * (mesh.Nx + 1) * (mesh.Ny + 1)
	free := make([]int, 0, ndof-len(fixed))
	for d := 0; d < ndof; d++ {
		if !fixed[d] {
			free = append(free, d)
		}
	}
	return free
}

func assemble(mesh Mesh, e *element, ndof int) (k, m *mat.Dense) {
	k = mat.NewDense(ndof, ndof, nil)
	m = mat.NewDense(ndof, ndof, nil)
	for ej := 0; ej < mesh.Ny; ej++ {
		for ei := 0; ei < mesh.Nx; ei++ {
			idx := elementDOFs(mesh, ei, ej)
			for r, gr := range idx {
				for s, gs := range idx {
					k.Set(gr, gs, k.At(gr, gs)+e.k.At(r, s))
					m.Set(gr, gs, m.At(gr, gs)+e.m.At(r, s))
				}
			}
		}
	}
	return k, m
}

// reduce extracts the symmetric sub-matrix on the given indices.
func reduce(full *mat.Dense, idx []int) *mat.SymDense {
	n := len(idx)
	out := mat.NewSymDense(n, nil)
	for i, gi := range idx {
		for j := i; j < n; j++ {
			gj := idx[j]
			out.SetSym(i, j, 0.5*(full.At(gi, gj)+full.At(gj, gi)))
		}
	}
	return out
}

// orthogonalizeTies re-orthonormalizes eigenvectors whose eigenvalues are
// numerically equal, so repeated frequencies stay distinct modes.
func orthogonalizeTies(values []float64, vecs *mat.Dense, count int) {
	rows, _ := vecs.Dims()
	for k := 1; k < count; k++ {
		for j := k - 1; j >= 0; j-- {
			if math.Abs(values[k]-values[j]) > tieTolerance*math.Abs(values[k]) {
				break
			}
			vk := vecs.ColView(k)
			vj := vecs.ColView(j)
			proj := mat.Dot(vk, vj)
			for i := 0; i < rows; i++ {
				vecs.Set(i, k, vecs.At(i, k)-proj*vecs.At(i, j))
			}
		}
		norm := mat.Norm(vecs.ColView(k), 2)
		if norm > 0 {
			for i := 0; i < rows; i++ {
				vecs.Set(i, k, vecs.At(i, k)/norm)
			}
		}
	}
}

// normalizeSign flips the shape so its largest deflection is positive.
func normalizeSign(shape []float64) {
	best, idx := 0.0, -1
	for i := 0; i < len(shape); i += 3 {
		if v := math.Abs(shape[i]); v > best*(1+1e-9) {
			best, idx = v, i
		}
	}
	if idx >= 0 && shape[idx] < 0 {
		for i := range shape {
			shape[i] = -shape[i]
		}
	}
}
