package storage

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/flutter"
)

func sampleResult() *flutter.Result {
	return &flutter.Result{
		Status:    flutter.Found,
		Velocity:  147.5,
		Frequency: 98.25,
		Mode:      1,
		Backend:   "dlm",
		Points: []flutter.Point{
			{
				Velocity:        100,
				DynamicPressure: 2060.5,
				Roots: []flutter.Root{
					{Frequency: 72.1, Damping: -0.02, Converged: true},
					{Frequency: 130.4, Damping: -0.01, Converged: true},
				},
			},
			{
				Velocity:        200,
				DynamicPressure: 8242,
				Roots: []flutter.Root{
					{Frequency: 80.3, Damping: -0.05, Converged: true},
					{Frequency: math.NaN(), Damping: math.NaN()},
				},
				Err: errors.New("flutter: mode 2 at 200.00 m/s: singular"),
			},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.GetPreset("aluminum", "reference")
	cfg.Boundary = boundary.CSSS
	id, err := s.Save(cfg, sampleResult(), []string{"note"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	run, err := s.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if run.Meta.Name != "aluminum/reference" || run.Meta.Failed != 1 || run.Meta.Points != 2 {
		t.Errorf("unexpected metadata %+v", run.Meta)
	}
	if run.Config.Boundary != boundary.CSSS {
		t.Errorf("boundary %s, want CSSS", run.Config.Boundary)
	}

	res := run.Result
	if res.Status != flutter.Found || res.Velocity != 147.5 || res.Mode != 1 {
		t.Errorf("unexpected result %s", res)
	}
	if len(res.Points) != 2 || res.Modes() != 2 {
		t.Fatalf("got %d points with %d modes", len(res.Points), res.Modes())
	}
	if got := res.Points[0].Roots[1]; got.Frequency != 130.4 || got.Damping != -0.01 || !got.Converged {
		t.Errorf("root not preserved: %+v", got)
	}
	failed := res.Points[1]
	if !math.IsNaN(failed.Roots[1].Damping) || failed.Roots[1].Converged {
		t.Errorf("failed root not preserved: %+v", failed.Roots[1])
	}
	if failed.Err == nil || failed.Err.Error() != "flutter: mode 2 at 200.00 m/s: singular" {
		t.Errorf("sample error not preserved: %v", failed.Err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v %v", runs, err)
	}

	first, err := s.Save(config.DefaultConfig(), sampleResult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(config.DefaultConfig(), sampleResult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("run IDs collide")
	}

	runs, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != first || runs[1].ID != second {
		t.Errorf("unexpected listing %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected an empty listing, got %v %v", runs, err)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	if _, err := New(t.TempDir()).Load("nope"); err == nil {
		t.Error("expected an error for an unknown run")
	}
}
