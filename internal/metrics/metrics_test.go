package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/panelflutter/internal/flutter"
)

func points() []flutter.Point {
	return []flutter.Point{
		{Velocity: 100, Roots: []flutter.Root{{Damping: -0.05, Converged: true}, {Damping: -0.01, Converged: true}}},
		{Velocity: 150, Roots: []flutter.Root{{Damping: -0.04, Converged: true}, {Damping: 0.02, Converged: false}}},
		{Velocity: 200, Roots: []flutter.Root{{Damping: math.NaN()}, {Damping: math.NaN()}}, Err: errors.New("singular")},
		{Velocity: 250, Roots: []flutter.Root{{Damping: -0.03, Converged: true}, {Damping: 0.08, Converged: true}}},
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		metric Metric
		want   float64
	}{
		{NewSuccess(), 0.75},
		{NewConvergence(), 5.0 / 6.0},
		{NewPeakDamping(), 0.08},
	}
	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			for i, p := range points() {
				tt.metric.OnSample(p, i+1, 4)
			}
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReset(t *testing.T) {
	for _, m := range Defaults() {
		empty := m.Value()
		for i, p := range points() {
			m.OnSample(p, i+1, 4)
		}
		m.Reset()
		got := m.Value()
		if got != empty && !(math.IsNaN(got) && math.IsNaN(empty)) {
			t.Errorf("%s: reset gave %v, want %v", m.Name(), got, empty)
		}
	}
}
