package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/panelflutter/internal/flutter"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Stable = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ff88"))

	Unstable = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffaa00"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// Damping renders g, red when the root is unstable. Failed roots show as
// a dash.
func Damping(g float64) string {
	switch {
	case math.IsNaN(g):
		return Subtle.Render(fmt.Sprintf("%8s", "-"))
	case g > 0:
		return Unstable.Render(fmt.Sprintf("%+8.4f", g))
	}
	return Stable.Render(fmt.Sprintf("%+8.4f", g))
}

// Status renders the one-line answer of a sweep.
func Status(res *flutter.Result) string {
	switch res.Status {
	case flutter.Found:
		return Unstable.Render(res.String())
	case flutter.Cancelled:
		return Warning.Render(res.String())
	}
	return Stable.Render(res.String())
}

// Rating colours a margin rating.
func Rating(r flutter.Rating) string {
	switch r {
	case flutter.Unsafe:
		return Unstable.Render(r.String())
	case flutter.Marginal:
		return Warning.Render(r.String())
	}
	return Stable.Render(r.String())
}

func ProgressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return Value.Render(strings.Repeat("█", filled)) + Subtle.Render(strings.Repeat("░", width-filled))
}

// Sparkline draws values scaled to their own range. NaN values are blank.
func Sparkline(values []float64) string {
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng <= 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteRune(' ')
			continue
		}
		idx := int((v - lo) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}
