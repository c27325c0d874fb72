// Package tui shows a velocity sweep live in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/panelflutter/internal/experiment"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/viz"
)

type sampleMsg struct {
	point       flutter.Point
	done, total int
}

type doneMsg struct{ err error }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	title  string
	cancel context.CancelFunc
	start  time.Time
	now    time.Time

	total  int
	done   int
	points []flutter.Point // velocity order

	finished bool
	err      error
	width    int
}

func newModel(title string, total int, cancel context.CancelFunc) model {
	now := time.Now()
	return model{title: title, total: total, cancel: cancel, start: now, now: now, width: 80}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case sampleMsg:
		m.done, m.total = msg.done, msg.total
		i := sort.Search(len(m.points), func(i int) bool { return m.points[i].Velocity >= msg.point.Velocity })
		m.points = append(m.points, flutter.Point{})
		copy(m.points[i+1:], m.points[i:])
		m.points[i] = msg.point
		return m, nil
	case doneMsg:
		m.finished, m.err = true, msg.err
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		if m.finished {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + viz.Title.Render(m.title) + "  " + viz.Subtle.Render(m.now.Sub(m.start).Round(100*time.Millisecond).String()) + "\n\n")

	barWidth := m.width - 24
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		barWidth = 10
	}
	b.WriteString(fmt.Sprintf("  %s %s\n\n", viz.ProgressBar(m.done, m.total, barWidth), viz.Label.Render(fmt.Sprintf("%d/%d samples", m.done, m.total))))

	if len(m.points) == 0 {
		b.WriteString("  " + viz.Subtle.Render("solving modes...") + "\n")
	} else {
		b.WriteString(m.viewModes())
	}

	if m.finished && m.err != nil {
		b.WriteString("\n  " + viz.Warning.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n  " + viz.KeyHint.Render("q stop") + "\n")
	return b.String()
}

func (m model) viewModes() string {
	var b strings.Builder
	last := m.points[len(m.points)-1]
	b.WriteString(viz.Label.Render(fmt.Sprintf("  %-6s %10s %9s  V-g to %.1f m/s", "MODE", "FREQ (Hz)", "DAMPING", last.Velocity)) + "\n")

	for mode := 0; mode < len(last.Roots); mode++ {
		g := make([]float64, len(m.points))
		for i, p := range m.points {
			g[i] = math.NaN()
			if mode < len(p.Roots) {
				g[i] = p.Roots[mode].Damping
			}
		}
		r := last.Roots[mode]
		line := fmt.Sprintf("  %-6d %10.2f %s  %s", mode+1, r.Frequency, viz.Damping(r.Damping), viz.Sparkline(g))
		if unstable(g) {
			line += " " + viz.Unstable.Render("unstable")
		}
		b.WriteString(line + "\n")
	}
	if failed := m.failed(); failed > 0 {
		b.WriteString("  " + viz.Warning.Render(fmt.Sprintf("%d samples failed", failed)) + "\n")
	}
	return b.String()
}

func (m model) failed() int {
	n := 0
	for _, p := range m.points {
		if p.Failed() {
			n++
		}
	}
	return n
}

func unstable(g []float64) bool {
	for _, v := range g {
		if v > 0 {
			return true
		}
	}
	return false
}

// Run executes the analysis while drawing its progress. Quitting the view
// cancels the sweep; the partial outcome is returned with the error.
func Run(ctx context.Context, a *experiment.Analysis) (*experiment.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	title := a.Config().Name
	if title == "" {
		title = "flutter sweep"
	}
	p := tea.NewProgram(newModel(title, a.Config().Flow.Points, cancel))
	a.Engine().AddObserver(flutter.ObserverFunc(func(pt flutter.Point, done, total int) {
		p.Send(sampleMsg{point: pt, done: done, total: total})
	}))

	type result struct {
		out *experiment.Outcome
		err error
	}
	results := make(chan result, 1)
	go func() {
		out, err := a.Run(ctx)
		results <- result{out, err}
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-results
		return nil, err
	}
	cancel()
	r := <-results
	return r.out, r.err
}
