package study

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/flutter"
)

func smallBase() *config.Config {
	cfg := config.GetPreset("aluminum", "thick_clamped")
	cfg.Geometry.Nx, cfg.Geometry.Ny = 6, 4
	cfg.Solver.Modes = 2
	return cfg
}

func TestGridSearch(t *testing.T) {
	g, err := NewGridSearch(smallBase(), []string{"altitude", "thickness"}, [][]float64{{0, 1000}, {5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 4 {
		t.Fatalf("size %d, want 4", g.Size())
	}

	cases, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(cases) != 4 {
		t.Fatalf("got %d cases, want 4", len(cases))
	}
	if cases[0].Params["altitude"] != 0 || cases[0].Params["thickness"] != 5 || cases[3].Params["altitude"] != 1000 {
		t.Errorf("cases out of grid order: %v", cases)
	}
	for _, c := range cases {
		if c.Err != nil {
			t.Errorf("%v: %v", c.Params, c.Err)
			continue
		}
		if c.Result.Status != flutter.NoFlutter {
			t.Errorf("%v: %s", c.Params, c.Result)
		}
	}
	if _, ok := Critical(cases); ok {
		t.Error("no critical case expected without flutter")
	}
}

func TestGridSearchCancelled(t *testing.T) {
	g, err := NewGridSearch(smallBase(), []string{"mach"}, [][]float64{{0.3, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases, err := g.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("got %d cases after cancel", len(cases))
	}
}

func TestGridSearchRecordsCaseErrors(t *testing.T) {
	base := config.GetPreset("composite", "cfrp_quasi_iso")
	g, err := NewGridSearch(base, []string{"thickness"}, [][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	cases, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 || cases[0].Err == nil {
		t.Errorf("expected one failed case, got %+v", cases)
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"length mismatch", []string{"mach"}, nil},
		{"unknown", []string{"colour"}, [][]float64{{1}}},
		{"empty range", []string{"mach"}, [][]float64{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(config.DefaultConfig(), tt.params, tt.ranges); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseParam(t *testing.T) {
	name, values, err := ParseParam(" Mach = 0.5, 0.8,1.5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "mach" || len(values) != 3 || values[2] != 1.5 {
		t.Errorf("got %s %v", name, values)
	}

	for _, bad := range []string{"mach", "mach=fast", "span=1"} {
		if _, _, err := ParseParam(bad); err == nil {
			t.Errorf("ParseParam(%q) should fail", bad)
		}
	}
}

func TestCritical(t *testing.T) {
	cases := []Case{
		{Params: map[string]float64{"mach": 0.5}, Result: &flutter.Result{Status: flutter.Found, Velocity: 180}},
		{Params: map[string]float64{"mach": 0.7}, Result: &flutter.Result{Status: flutter.Found, Velocity: 150}},
		{Params: map[string]float64{"mach": 0.9}, Err: errors.New("failed")},
		{Params: map[string]float64{"mach": 1.1}, Result: &flutter.Result{Status: flutter.NoFlutter}},
	}
	c, ok := Critical(cases)
	if !ok || c.Params["mach"] != 0.7 {
		t.Errorf("got %+v, want the mach 0.7 case", c)
	}
}
