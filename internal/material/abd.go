package material

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// ABD is the 6x6 laminate stiffness matrix [[A B] [B D]].
type ABD [6][6]float64

// A returns the extensional block (N/m).
func (m ABD) A() [3][3]float64 { return m.block(0, 0) }

// B returns the extension-bending coupling block (N).
func (m ABD) B() [3][3]float64 { return m.block(0, 3) }

// D returns the bending block (N·m).
func (m ABD) D() [3][3]float64 { return m.block(3, 3) }

func (m ABD) block(r, c int) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[r+i][c+j]
		}
	}
	return out
}

// IsSymmetric checks every mirrored pair within a relative tolerance of the
// largest entry.
func (m ABD) IsSymmetric(tol float64) bool {
	scale := 0.0
	for i := range m {
		for j := range m[i] {
			scale = math.Max(scale, math.Abs(m[i][j]))
		}
	}
	if scale == 0 {
		return true
	}
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			if math.Abs(m[i][j]-m[j][i]) > tol*scale {
				return false
			}
		}
	}
	return true
}

type abdCache struct {
	once sync.Once
	abd  ABD
	err  error
}

// Laminate is an ordered ply stack, bottom ply first.
type Laminate struct {
	plies []Ply
	cache atomic.Pointer[abdCache]
}

func NewLaminate(plies ...Ply) *Laminate {
	l := &Laminate{plies: make([]Ply, len(plies))}
	copy(l.plies, plies)
	return l
}

// Plies returns a copy of the stack.
func (l *Laminate) Plies() []Ply {
	out := make([]Ply, len(l.plies))
	copy(out, l.plies)
	return out
}

func (l *Laminate) Len() int { return len(l.plies) }

// SetPly replaces ply i and invalidates the cached ABD matrix.
func (l *Laminate) SetPly(i int, p Ply) error {
	if i < 0 || i >= len(l.plies) {
		return fmt.Errorf("material: ply index %d out of range [0, %d)", i, len(l.plies))
	}
	l.plies[i] = p
	l.cache.Store(nil)
	return nil
}

// AddPly appends a ply on top of the stack and invalidates the cache.
func (l *Laminate) AddPly(p Ply) {
	l.plies = append(l.plies, p)
	l.cache.Store(nil)
}

func (l *Laminate) Validate() error {
	if len(l.plies) == 0 {
		return &InvalidLaminateError{Ply: -1, Reason: "laminate has no plies"}
	}
	for i, p := range l.plies {
		if err := p.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (l *Laminate) Thickness() float64 {
	t := 0.0
	for _, p := range l.plies {
		t += p.ThicknessMM
	}
	return t
}

func (l *Laminate) ArealDensity() float64 {
	rho := 0.0
	for _, p := range l.plies {
		rho += p.Density * p.ThicknessMM * 1e-3
	}
	return rho
}

// ABD returns the cached stiffness matrix, computing it on first call.
func (l *Laminate) ABD() (ABD, error) {
	c := l.cache.Load()
	if c == nil {
		l.cache.CompareAndSwap(nil, &abdCache{})
		c = l.cache.Load()
	}
	c.once.Do(func() {
		c.abd, c.err = ComputeABD(l)
	})
	return c.abd, c.err
}

func (l *Laminate) BendingStiffness() ([3][3]float64, error) {
	m, err := l.ABD()
	if err != nil {
		return [3][3]float64{}, err
	}
	return m.D(), nil
}

// ComputeABD integrates the transformed ply stiffnesses through the thickness.
// It does not consult or fill the laminate's cache.
func ComputeABD(l *Laminate) (ABD, error) {
	var out ABD
	if l == nil {
		return out, &InvalidLaminateError{Ply: -1, Reason: "nil laminate"}
	}
	if err := l.Validate(); err != nil {
		return out, err
	}

	h := l.Thickness() * 1e-3
	z0 := -h / 2
	for _, p := range l.plies {
		z1 := z0 + p.ThicknessMM*1e-3
		qb := p.Transformed()
		dz1 := z1 - z0
		dz2 := (z1*z1 - z0*z0) / 2
		dz3 := (z1*z1*z1 - z0*z0*z0) / 3
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				out[i][j] += qb[i][j] * dz1
				out[i][j+3] += qb[i][j] * dz2
				out[i+3][j] += qb[i][j] * dz2
				out[i+3][j+3] += qb[i][j] * dz3
			}
		}
		z0 = z1
	}
	return out, nil
}
