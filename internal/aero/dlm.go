package aero

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/modal"
)

const (
	DefaultChordBoxes = 10
	// DefaultLoadCorrection weights the lattice forces uniformly, in the
	// role of a WKK correction matrix. Unweighted, the lattice places the
	// reference aluminium panel (500x300 mm, 2 mm, SSSS, Mach 0.8 at 10 km)
	// in first-mode divergence near 750 m/s; this weight brings it to
	// about 143 m/s.
	DefaultLoadCorrection = 25.0
	// MaxBoxPhase is the largest convected phase change across one box,
	// ω·Δx/V, the lattice is trusted with: about twelve boxes per
	// wavelength.
	MaxBoxPhase         = 0.5
	DefaultMaxCondition = 1e12

	// maxLatticeMach keeps β ≥ 0.1 in the subsonic kernel.
	maxLatticeMach = 0.995
	// minAcousticMach bounds the acoustic limit's 2/M factor.
	minAcousticMach = 0.1
)

// DefaultReducedFrequencies is the tabulation list, ascending. It ends at
// the resolution limit of DefaultChordBoxes.
var DefaultReducedFrequencies = []float64{0.05, 0.1, 0.2, 0.35, 0.5, 0.75, 1.0, 1.5, 2.0, 2.5}

// DoubletLattice discretizes the panel into boxes and relates box pressure
// jumps to box normalwash through the subsonic doublet kernel. The flow
// wets one side of the panel, which carries half the lattice pressure jump.
// Each kernel solve is O(B³) in the box count B, so forces are tabulated
// once per modal result and Mach number over ReducedFrequencies and
// interpolated linearly in k. Requests outside the table are solved
// directly and cached by value.
//
// Above the reduced frequency the boxes resolve (MaxBoxPhase), forces take
// the high-frequency acoustic limit of the same flow, a local pressure
// ρa·(∂w/∂t + V·∂w/∂x), instead of an aliased lattice solution.
//
// A DoubletLattice must not be copied after first use.
type DoubletLattice struct {
	ChordBoxes         int
	SpanBoxes          int // 0 sizes boxes square-ish from the planform
	Correction         float64
	ReducedFrequencies []float64
	MaxCondition       float64

	group  singleflight.Group
	mu     sync.Mutex
	tables map[tableKey]*forceTable
	direct map[directKey]*mat.CDense
	solves int
}

type tableKey struct {
	modes *modal.Result
	mach  float64
}

type directKey struct {
	tableKey
	k float64
}

type forceTable struct {
	lat  *lattice
	ks   []float64
	q    []*mat.CDense
	errs []error
}

func NewDoubletLattice() *DoubletLattice {
	return &DoubletLattice{
		ChordBoxes:         DefaultChordBoxes,
		Correction:         DefaultLoadCorrection,
		ReducedFrequencies: DefaultReducedFrequencies,
		MaxCondition:       DefaultMaxCondition,
	}
}

func (d *DoubletLattice) Name() string { return "dlm" }

func (d *DoubletLattice) MachRange() (float64, float64) { return 0, PistonMinMach }

// Solves reports how many kernel factorizations the backend has performed.
func (d *DoubletLattice) Solves() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.solves
}

func (d *DoubletLattice) GeneralizedForces(ctx context.Context, modes *modal.Result, flow FlowCondition, velocity, k float64) (*mat.CDense, error) {
	if err := checkRegime(d, flow.Mach); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !(k > 0) {
		return nil, fmt.Errorf("aero: reduced frequency %g must be positive", k)
	}

	key := tableKey{modes: modes, mach: flow.Mach}
	t, err := d.table(key)
	if err != nil {
		return nil, err
	}
	if k > t.lat.kMax {
		return pistonForces(modes, d.correction()*2/math.Max(flow.Mach, minAcousticMach), k), nil
	}

	ks := t.ks
	if len(ks) == 0 || k < ks[0] || k > ks[len(ks)-1] {
		return d.solveDirect(directKey{tableKey: key, k: k}, t.lat, k)
	}

	i := sort.SearchFloat64s(ks, k)
	if ks[i] == k {
		if t.errs[i] != nil {
			return nil, t.errs[i]
		}
		return cloneC(t.q[i]), nil
	}
	lo, hi := i-1, i
	if t.errs[lo] != nil {
		return nil, t.errs[lo]
	}
	if t.errs[hi] != nil {
		return nil, t.errs[hi]
	}
	w := (k - ks[lo]) / (ks[hi] - ks[lo])
	return lerpC(t.q[lo], t.q[hi], w), nil
}

// table returns the tabulated forces for key, computing them at most once
// even under concurrent callers.
func (d *DoubletLattice) table(key tableKey) (*forceTable, error) {
	d.mu.Lock()
	if t, ok := d.tables[key]; ok {
		d.mu.Unlock()
		return t, nil
	}
	d.mu.Unlock()

	v, err, _ := d.group.Do(fmt.Sprintf("%p/%g", key.modes, key.mach), func() (interface{}, error) {
		d.mu.Lock()
		if t, ok := d.tables[key]; ok {
			d.mu.Unlock()
			return t, nil
		}
		d.mu.Unlock()

		lat := d.newLattice(key.modes, key.mach)
		var ks []float64
		for _, k := range d.ReducedFrequencies {
			if k > 0 && k <= lat.kMax {
				ks = append(ks, k)
			}
		}
		sort.Float64s(ks)
		t := &forceTable{lat: lat, ks: ks, q: make([]*mat.CDense, len(ks)), errs: make([]error, len(ks))}
		for i, k := range ks {
			t.q[i], t.errs[i] = d.solve(lat, k)
		}

		d.mu.Lock()
		if d.tables == nil {
			d.tables = make(map[tableKey]*forceTable)
		}
		d.tables[key] = t
		d.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*forceTable), nil
}

func (d *DoubletLattice) solveDirect(key directKey, lat *lattice, k float64) (*mat.CDense, error) {
	d.mu.Lock()
	if q, ok := d.direct[key]; ok {
		d.mu.Unlock()
		return cloneC(q), nil
	}
	d.mu.Unlock()

	v, err, _ := d.group.Do(fmt.Sprintf("%p/%g/%x", key.modes, key.mach, math.Float64bits(k)), func() (interface{}, error) {
		q, err := d.solve(lat, k)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		if d.direct == nil {
			d.direct = make(map[directKey]*mat.CDense)
		}
		d.direct[key] = q
		d.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneC(v.(*mat.CDense)), nil
}

// lattice is the box layout of one panel: doublet lines on the box quarter
// chords, collocation points on the three-quarter chords, with the mode
// shapes sampled at both.
type lattice struct {
	mach   float64
	chord  float64
	dx, e  float64 // box chord and semi-span
	area   float64
	kMax   float64
	xd, xc []float64
	y      []float64
	wl     *mat.Dense // deflection at the doublet lines, boxes × modes
	w, wx  *mat.Dense // deflection and slope at the collocation points
	nModes int
}

func (d *DoubletLattice) newLattice(modes *modal.Result, mach float64) *lattice {
	g := modes.Geometry()
	nc := d.ChordBoxes
	if nc <= 0 {
		nc = DefaultChordBoxes
	}
	ns := d.SpanBoxes
	if ns <= 0 {
		ns = int(math.Round(float64(nc) * g.Span() / g.Chord()))
		ns = max(4, min(ns, 20))
	}

	dx := g.Chord() / float64(nc)
	dy := g.Span() / float64(ns)
	nb := nc * ns
	n := modes.Len()
	lat := &lattice{
		mach:  math.Min(mach, maxLatticeMach),
		chord: g.Chord(),
		dx:    dx,
		e:     dy / 2,
		area:  dx * dy,
		// ω·Δx/V = 2k/nc
		kMax:   MaxBoxPhase * float64(nc) / 2,
		xd:     make([]float64, nb),
		xc:     make([]float64, nb),
		y:      make([]float64, nb),
		wl:     mat.NewDense(nb, n, nil),
		w:      mat.NewDense(nb, n, nil),
		wx:     mat.NewDense(nb, n, nil),
		nModes: n,
	}
	for j := 0; j < ns; j++ {
		for i := 0; i < nc; i++ {
			b := j*nc + i
			lat.xd[b] = (float64(i) + 0.25) * dx
			lat.xc[b] = (float64(i) + 0.75) * dx
			lat.y[b] = (float64(j) + 0.5) * dy
			for m := 0; m < n; m++ {
				wl, _ := modes.Deflection(m, lat.xd[b], lat.y[b])
				w, wx := modes.Deflection(m, lat.xc[b], lat.y[b])
				lat.wl.Set(b, m, wl)
				lat.w.Set(b, m, w)
				lat.wx.Set(b, m, wx)
			}
		}
	}
	return lat
}

// solve assembles the influence matrix at k, solves for the box pressure
// jumps of every mode's normalwash and projects the wetted-side pressure
// back onto the modes.
func (d *DoubletLattice) solve(lat *lattice, k float64) (*mat.CDense, error) {
	nb := len(lat.xd)
	n := lat.nModes
	omega := 2 * k / lat.chord // ω/V

	// Complex system D·Δcp = w̄ as the real block system
	// [Dr −Di; Di Dr]·[Re Δcp; Im Δcp] = [Re w̄; Im w̄].
	a := mat.NewDense(2*nb, 2*nb, nil)
	for i := 0; i < nb; i++ {
		for j := 0; j < nb; j++ {
			c := influence(lat.xc[i]-lat.xd[j], lat.y[i]-lat.y[j], lat.e, lat.dx, omega, lat.mach)
			a.Set(i, j, real(c))
			a.Set(i, nb+j, -imag(c))
			a.Set(nb+i, j, imag(c))
			a.Set(nb+i, nb+j, real(c))
		}
	}

	// w̄ = ∂w/∂x + i(ω/V)·w
	rhs := mat.NewDense(2*nb, n, nil)
	for b := 0; b < nb; b++ {
		for m := 0; m < n; m++ {
			rhs.Set(b, m, lat.wx.At(b, m))
			rhs.Set(nb+b, m, omega*lat.w.At(b, m))
		}
	}

	var lu mat.LU
	lu.Factorize(a)
	d.mu.Lock()
	d.solves++
	d.mu.Unlock()

	limit := d.MaxCondition
	if limit <= 0 {
		limit = DefaultMaxCondition
	}
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > limit {
		return nil, &NumericalSingularityError{Backend: d.Name(), ReducedFrequency: k, Condition: cond}
	}
	var cp mat.Dense
	if err := lu.SolveTo(&cp, false, rhs); err != nil {
		return nil, &NumericalSingularityError{Backend: d.Name(), ReducedFrequency: k, Condition: lu.Cond()}
	}

	// The wetted side sees −Δcp/2; Q is its work on each mode.
	scale := -d.correction() * lat.area / 2
	q := mat.NewCDense(n, n, nil)
	for m := 0; m < n; m++ {
		for j := 0; j < n; j++ {
			var re, im float64
			for b := 0; b < nb; b++ {
				wm := lat.wl.At(b, m)
				re += wm * cp.At(b, j)
				im += wm * cp.At(nb+b, j)
			}
			q.Set(m, j, complex(scale*re, scale*im))
		}
	}
	return q, nil
}

func (d *DoubletLattice) correction() float64 {
	if d.Correction == 0 {
		return DefaultLoadCorrection
	}
	return d.Correction
}

func cloneC(a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}

func lerpC(a, b *mat.CDense, w float64) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	cw := complex(w, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j)+cw*(b.At(i, j)-a.At(i, j)))
		}
	}
	return out
}
