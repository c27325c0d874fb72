// Package metrics observes a velocity sweep and reduces it to numbers
// worth logging.
package metrics

import (
	"math"

	"github.com/san-kum/panelflutter/internal/flutter"
)

// Metric is a flutter.Observer that reduces the samples it saw to one value.
type Metric interface {
	flutter.Observer
	Name() string
	Value() float64
	Reset()
}

// Defaults returns a fresh set of the sweep metrics.
func Defaults() []Metric {
	return []Metric{NewSuccess(), NewConvergence(), NewPeakDamping()}
}

// Success is the fraction of samples that produced roots.
type Success struct {
	samples int
	failed  int
}

func NewSuccess() *Success { return &Success{} }

func (s *Success) Name() string { return "success" }

func (s *Success) OnSample(p flutter.Point, done, total int) {
	s.samples++
	if p.Failed() {
		s.failed++
	}
}

func (s *Success) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.failed)/float64(s.samples)
}

func (s *Success) Reset() { s.samples, s.failed = 0, 0 }

// Convergence is the fraction of roots whose PK iteration converged.
type Convergence struct {
	roots     int
	converged int
}

func NewConvergence() *Convergence { return &Convergence{} }

func (c *Convergence) Name() string { return "convergence" }

func (c *Convergence) OnSample(p flutter.Point, done, total int) {
	if p.Failed() {
		return
	}
	for _, r := range p.Roots {
		c.roots++
		if r.Converged {
			c.converged++
		}
	}
}

func (c *Convergence) Value() float64 {
	if c.roots == 0 {
		return 1.0
	}
	return float64(c.converged) / float64(c.roots)
}

func (c *Convergence) Reset() { c.roots, c.converged = 0, 0 }

// PeakDamping is the largest damping of any root. NaN until a root is seen.
type PeakDamping struct {
	peak float64
}

func NewPeakDamping() *PeakDamping { return &PeakDamping{peak: math.NaN()} }

func (d *PeakDamping) Name() string { return "peak_damping" }

func (d *PeakDamping) OnSample(p flutter.Point, done, total int) {
	for _, r := range p.Roots {
		if math.IsNaN(r.Damping) {
			continue
		}
		if math.IsNaN(d.peak) || r.Damping > d.peak {
			d.peak = r.Damping
		}
	}
}

func (d *PeakDamping) Value() float64 { return d.peak }

func (d *PeakDamping) Reset() { d.peak = math.NaN() }
