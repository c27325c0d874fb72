package flutter

import "math"

type crossing struct {
	velocity  float64
	frequency float64
	mode      int
	below     bool
}

// detect finds the earliest stable-to-unstable transition over points
// sorted by velocity. Roots that failed or did not converge are skipped,
// so a transition may span them. A mode already unstable at its first
// valid sample is reported at that sample.
func detect(points []Point) (crossing, bool) {
	best := crossing{velocity: math.Inf(1)}
	found := false

	modes := 0
	for _, p := range points {
		modes = max(modes, len(p.Roots))
	}

	for m := 0; m < modes; m++ {
		c, ok := detectMode(points, m)
		if !ok {
			continue
		}
		if c.velocity < best.velocity {
			best, found = c, true
		}
	}
	return best, found
}

func detectMode(points []Point, m int) (crossing, bool) {
	prev := -1
	for i, p := range points {
		if m >= len(p.Roots) || !p.Roots[m].valid() {
			continue
		}
		r := p.Roots[m]
		if prev < 0 {
			if r.Damping >= 0 {
				return crossing{velocity: p.Velocity, frequency: r.Frequency, mode: m, below: true}, true
			}
			prev = i
			continue
		}

		a := points[prev]
		ra := a.Roots[m]
		if ra.Damping < 0 && r.Damping >= 0 {
			t := -ra.Damping / (r.Damping - ra.Damping)
			return crossing{
				velocity:  a.Velocity + t*(p.Velocity-a.Velocity),
				frequency: ra.Frequency + t*(r.Frequency-ra.Frequency),
				mode:      m,
			}, true
		}
		prev = i
	}
	return crossing{}, false
}
