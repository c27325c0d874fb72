package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/panelflutter/internal/flutter"
)

func sample(v, g float64) sampleMsg {
	return sampleMsg{point: flutter.Point{
		Velocity: v,
		Roots: []flutter.Root{
			{Frequency: 40, Damping: -0.02, Converged: true},
			{Frequency: 90, Damping: g, Converged: true},
		},
	}}
}

func TestSamplesKeptInVelocityOrder(t *testing.T) {
	var m tea.Model = newModel("test", 3, nil)
	for i, v := range []float64{200, 100, 150} {
		msg := sample(v, -0.01)
		msg.done, msg.total = i+1, 3
		m, _ = m.Update(msg)
	}
	got := m.(model)
	if got.done != 3 {
		t.Errorf("done = %d", got.done)
	}
	for i, want := range []float64{100, 150, 200} {
		if got.points[i].Velocity != want {
			t.Fatalf("points out of order: %+v", got.points)
		}
	}
}

func TestViewFlagsUnstableMode(t *testing.T) {
	var m tea.Model = newModel("reference", 2, nil)
	if !strings.Contains(m.View(), "solving modes") {
		t.Error("expected the modal solve placeholder")
	}
	m, _ = m.Update(sample(100, -0.01))
	m, _ = m.Update(sample(150, 0.03))

	view := m.View()
	for _, want := range []string{"reference", "MODE", "unstable", "150.0 m/s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuitCancelsSweep(t *testing.T) {
	cancelled := false
	var m tea.Model = newModel("x", 4, func() { cancelled = true })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("quitting should cancel the sweep")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDoneQuitsAndShowsError(t *testing.T) {
	var m tea.Model = newModel("x", 4, nil)
	m, cmd := m.Update(doneMsg{err: errors.New("sweep cancelled after 2 of 4 samples")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !strings.Contains(m.View(), "cancelled after 2 of 4") {
		t.Error("error not shown")
	}
}
