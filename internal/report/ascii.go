package report

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/panelflutter/internal/flutter"
)

// Kind selects the diagram.
type Kind int

const (
	Damping Kind = iota
	Frequency
)

func (k Kind) String() string {
	if k == Frequency {
		return "V-f"
	}
	return "V-g"
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "g", "vg", "damping":
		return Damping, nil
	case "f", "vf", "frequency":
		return Frequency, nil
	}
	return Damping, fmt.Errorf("invalid diagram: %q", s)
}

// series returns the per-mode curves for k.
func series(res *flutter.Result, k Kind) (velocity []float64, curves [][]float64) {
	v, freq, damp := res.Curves()
	if k == Frequency {
		return v, freq
	}
	return v, damp
}

// ASCII plots every mode against sample index. Modes without a single
// valid value are left out.
func ASCII(res *flutter.Result, k Kind) string {
	v, curves := series(res, k)
	var data [][]float64
	for _, c := range curves {
		if hasValue(c) {
			data = append(data, c)
		}
	}
	if len(data) == 0 {
		return ""
	}

	caption := fmt.Sprintf("%s, %d modes, %.0f to %.0f m/s", k, len(data), v[0], v[len(v)-1])
	if k == Damping && res.Found() {
		caption += fmt.Sprintf(", flutter at %.1f m/s", res.Velocity)
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

func hasValue(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
