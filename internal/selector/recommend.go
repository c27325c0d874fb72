package selector

import (
	"fmt"
	"sort"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/modal"
)

// Priorities bias the recommendation. Zero value is a preliminary design
// study.
type Priorities struct {
	Speed    bool
	Accuracy bool
	Detailed bool
}

type Recommendation struct {
	Method       Method
	Confidence   float64 // 0..1
	Reasons      []string
	Alternatives []Method
}

func (r Recommendation) String() string {
	return fmt.Sprintf("%s (confidence %.0f%%)", r.Method, 100*r.Confidence)
}

// Recommend scores every backend the factory can build and that accepts
// the flow's Mach number. thickness is in mm.
func (s *Selector) Recommend(flow aero.FlowCondition, geom modal.Geometry, thickness float64, p Priorities) (Recommendation, error) {
	if err := geom.Validate(); err != nil {
		return Recommendation{}, err
	}
	score := map[Method]float64{}
	var reasons []string
	add := func(m Method, v float64) { score[m] += v }

	switch mach := flow.Mach; {
	case mach > aero.PistonMinMach:
		add(Piston, 0.4)
		add(External, 0.3)
		add(DoubletLattice, -0.2)
		reasons = append(reasons, fmt.Sprintf("supersonic flow (M=%.2f) favours piston theory", mach))
	case mach >= 0.3 && mach <= 0.95:
		add(DoubletLattice, 0.4)
		add(External, 0.35)
		add(Piston, 0.1)
		reasons = append(reasons, fmt.Sprintf("subsonic flow (M=%.2f) favours the doublet lattice", mach))
	case mach < 0.3:
		add(DoubletLattice, 0.2)
		add(External, 0.25)
		reasons = append(reasons, fmt.Sprintf("low subsonic flow (M=%.2f)", mach))
	default:
		reasons = append(reasons, fmt.Sprintf("transonic flow (M=%.2f) is poorly served by every linear theory", mach))
	}

	switch ar := geom.Aspect(); {
	case ar > 3:
		add(Piston, 0.2)
		reasons = append(reasons, fmt.Sprintf("high aspect ratio %.1f", ar))
	case ar < 1.5:
		add(DoubletLattice, 0.2)
		reasons = append(reasons, fmt.Sprintf("low aspect ratio %.1f", ar))
	}

	if thickness/geom.Length < 0.01 {
		add(Piston, 0.2)
		add(DoubletLattice, 0.3)
		reasons = append(reasons, "thin panel")
	} else {
		add(External, 0.2)
		reasons = append(reasons, "thick panel may need a full aeroelastic model")
	}

	if p.Speed {
		add(Piston, 0.3)
		reasons = append(reasons, "fast analysis requested")
	}
	if p.Accuracy {
		add(DoubletLattice, 0.2)
		add(External, 0.3)
		reasons = append(reasons, "high accuracy requested")
	}
	if !p.Detailed {
		add(Piston, 0.2)
		add(DoubletLattice, 0.1)
	}
	add(External, 0.1)

	type ranked struct {
		m     Method
		score float64
	}
	var candidates []ranked
	for _, m := range []Method{Piston, DoubletLattice, External} {
		b, err := s.factory.Backend(m)
		if err != nil || !aero.Supports(b, flow.Mach) {
			continue
		}
		candidates = append(candidates, ranked{m, score[m]})
	}
	if len(candidates) == 0 {
		return Recommendation{}, fmt.Errorf("%w: nothing covers Mach %.2f", ErrNoBackend, flow.Mach)
	}
	sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].score > candidates[b].score })

	rec := Recommendation{
		Method:     candidates[0].m,
		Confidence: min(max(candidates[0].score, 0), 1),
		Reasons:    reasons,
	}
	for _, c := range candidates[1:] {
		if c.score > 0.3 {
			rec.Alternatives = append(rec.Alternatives, c.m)
		}
	}
	return rec, nil
}
