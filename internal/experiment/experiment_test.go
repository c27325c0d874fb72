package experiment

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/modal"
	"github.com/san-kum/panelflutter/internal/selector"
)

// crossingBackend destabilizes every mode above onset m/s.
type crossingBackend struct {
	name  string
	onset float64
}

func (c *crossingBackend) Name() string                  { return c.name }
func (c *crossingBackend) MachRange() (float64, float64) { return 0, math.Inf(1) }

func (c *crossingBackend) GeneralizedForces(ctx context.Context, modes *modal.Result, flow aero.FlowCondition, velocity, k float64) (*mat.CDense, error) {
	n := modes.Len()
	q := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		q.Set(i, i, complex(0, k*(c.onset-velocity)*1e-3))
	}
	return q, nil
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Geometry.Nx, cfg.Geometry.Ny = 6, 4
	cfg.Solver.Modes = 2
	cfg.Flow = aero.FlowCondition{Mach: 0.5, Altitude: 0, VelocityMin: 50, VelocityMax: 150, Points: 11}
	return cfg
}

func TestRunThickClampedPanel(t *testing.T) {
	cfg := config.GetPreset("aluminum", "thick_clamped")
	cfg.Solver.Modes = 4

	out, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Selection.Method != selector.DoubletLattice {
		t.Errorf("expected dlm at Mach 0.3, got %s", out.Selection.Method)
	}
	if out.Modes.Len() != 4 {
		t.Errorf("got %d modes, want 4", out.Modes.Len())
	}
	if out.Result.Status != flutter.NoFlutter {
		t.Errorf("expected no flutter, got %s", out.Result)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Geometry.Length = -1
	if _, err := New(cfg).Run(context.Background()); !errors.Is(err, modal.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(smallConfig()).Run(ctx)
	if !errors.Is(err, flutter.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if out == nil || out.Result.Status != flutter.Cancelled {
		t.Fatalf("expected a cancelled outcome, got %+v", out)
	}
	if len(out.Result.Points) != 0 {
		t.Errorf("got %d points from a cancelled context", len(out.Result.Points))
	}
}

func TestOverrideOutsideRegimeFails(t *testing.T) {
	cfg := smallConfig()
	cfg.Solver.Method = selector.Piston

	out, err := New(cfg).Run(context.Background())
	if !errors.Is(err, aero.ErrUnsupportedFlowRegime) {
		t.Fatalf("piston at Mach 0.5 should be refused by the backend, got %v", err)
	}
	if out != nil {
		t.Error("no outcome expected")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(config.SolverConfig{ChordBoxes: 6, Correction: 12})

	a, err := r.Backend(selector.DoubletLattice)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Backend(selector.DoubletLattice)
	if a != b {
		t.Error("expected one shared dlm instance")
	}
	dlm := a.(*aero.DoubletLattice)
	if dlm.ChordBoxes != 6 || dlm.Correction != 12 {
		t.Errorf("solver settings not applied: %+v", dlm)
	}

	if _, err := r.Backend(selector.External); !errors.Is(err, selector.ErrNoBackend) {
		t.Errorf("expected ErrNoBackend, got %v", err)
	}
	if _, err := r.Backend(selector.Auto); err == nil {
		t.Error("expected an error for auto")
	}

	r.Register(selector.External, func(config.SolverConfig) (aero.Backend, error) {
		return &crossingBackend{name: "fake", onset: 100}, nil
	})
	ext, err := r.Backend(selector.External)
	if err != nil || ext.Name() != "fake" {
		t.Errorf("registered builder not used: %v %v", ext, err)
	}
	if got := r.ListBackends(); len(got) != 3 || got[0] != selector.Piston {
		t.Errorf("unexpected backend list %v", got)
	}
}

func TestCompare(t *testing.T) {
	cfg := smallConfig()
	r := NewRegistry(cfg.Solver)
	r.Register(selector.Piston, func(config.SolverConfig) (aero.Backend, error) {
		return &crossingBackend{name: "piston", onset: 100}, nil
	})
	r.Register(selector.External, func(config.SolverConfig) (aero.Backend, error) {
		return &crossingBackend{name: "external", onset: 110}, nil
	})

	results, cmp, err := NewWithRegistry(cfg, r).Compare(context.Background(), []selector.Method{selector.Piston, selector.External})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if cmp.Conservative != selector.Piston {
		t.Errorf("most conservative %s, want piston", cmp.Conservative)
	}
	if cmp.Confidence != selector.High {
		t.Errorf("confidence %s, want high", cmp.Confidence)
	}
}

func TestDefaultMethods(t *testing.T) {
	cfg := smallConfig()
	if _, err := New(cfg).DefaultMethods(); !errors.Is(err, selector.ErrNoBackend) || !strings.Contains(err.Error(), "solver.external.command") {
		t.Errorf("without an external command got %v, want ErrNoBackend naming solver.external.command", err)
	}

	cases := []struct {
		mach float64
		want selector.Method
	}{
		{0.5, selector.DoubletLattice},
		{2.0, selector.Piston},
	}
	for _, c := range cases {
		cfg := smallConfig()
		cfg.Flow.Mach = c.mach
		cfg.Solver.External.Command = "aero-solver"
		got, err := New(cfg).DefaultMethods()
		if err != nil {
			t.Fatalf("M%g: %v", c.mach, err)
		}
		if len(got) != 2 || got[0] != c.want || got[1] != selector.External {
			t.Errorf("M%g: methods %v, want [%s external]", c.mach, got, c.want)
		}
	}
}

func TestCompareDefaultMethods(t *testing.T) {
	cfg := smallConfig()
	r := NewRegistry(cfg.Solver)
	r.Register(selector.DoubletLattice, func(config.SolverConfig) (aero.Backend, error) {
		return &crossingBackend{name: "dlm", onset: 100}, nil
	})
	r.Register(selector.External, func(config.SolverConfig) (aero.Backend, error) {
		return &crossingBackend{name: "external", onset: 105}, nil
	})

	an := NewWithRegistry(cfg, r)
	methods, err := an.DefaultMethods()
	if err != nil {
		t.Fatal(err)
	}
	results, cmp, err := an.Compare(context.Background(), methods)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(results) != 2 || cmp.Conservative != selector.DoubletLattice {
		t.Errorf("got %d results, conservative %s; want 2 and dlm", len(results), cmp.Conservative)
	}
}
