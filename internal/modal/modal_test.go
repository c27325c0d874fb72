package modal

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/material"
)

var (
	panel  = Geometry{Length: 500, Width: 300, Nx: 10, Ny: 6}
	al7075 = material.Isotropic{Density: 2810, Modulus: 71.7e9, Poisson: 0.33, ThicknessMM: 2}
)

// analyticSSSS is the (m, n) natural frequency of a simply supported plate.
func analyticSSSS(m, n int) float64 {
	a, b := panel.Chord(), panel.Span()
	d := al7075.FlexuralRigidity()
	rhoH := al7075.ArealDensity()
	return math.Pi * math.Pi * math.Sqrt(d/rhoH) * (float64(m*m)/(a*a) + float64(n*n)/(b*b))
}

func TestSimplySupportedFrequencies(t *testing.T) {
	res, err := Solve(panel, al7075, boundary.SSSS, panel.Mesh(), 4)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Len() != 4 {
		t.Fatalf("expected 4 modes, got %d", res.Len())
	}

	tests := []struct {
		mode int
		want float64
	}{
		{0, analyticSSSS(1, 1)},
		{1, analyticSSSS(2, 1)},
	}
	for _, tt := range tests {
		got := res.Mode(tt.mode).Omega
		if rel := math.Abs(got-tt.want) / tt.want; rel > 0.05 {
			t.Errorf("mode %d: omega = %.1f rad/s, want %.1f (off by %.1f%%)", tt.mode, got, tt.want, 100*rel)
		}
	}

	omegas := res.Omegas()
	for i := 1; i < len(omegas); i++ {
		if omegas[i] < omegas[i-1] {
			t.Errorf("frequencies not ascending: %v", omegas)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	a, err := Solve(panel, al7075, boundary.CSSS, panel.Mesh(), 4)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	b, err := Solve(panel, al7075, boundary.CSSS, panel.Mesh(), 4)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if !reflect.DeepEqual(a.Mode(i), b.Mode(i)) {
			t.Errorf("mode %d differs between identical solves", i)
		}
	}
}

func TestClampedStifferThanSimplySupported(t *testing.T) {
	ssss, err := Solve(panel, al7075, boundary.SSSS, panel.Mesh(), 2)
	if err != nil {
		t.Fatalf("solve SSSS: %v", err)
	}
	cccc, err := Solve(panel, al7075, boundary.CCCC, panel.Mesh(), 2)
	if err != nil {
		t.Fatalf("solve CCCC: %v", err)
	}
	if cccc.Mode(0).Omega <= ssss.Mode(0).Omega {
		t.Errorf("CCCC omega1 %.1f not above SSSS omega1 %.1f", cccc.Mode(0).Omega, ssss.Mode(0).Omega)
	}
	if s, f := cccc.Factors(); s != 2.56 || f != 1.596 {
		t.Errorf("CCCC factors = (%g, %g)", s, f)
	}
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		geom   Geometry
		bc     boundary.Code
		modes  int
		target error
	}{
		{"free panel has rigid-body modes", Geometry{Length: 400, Width: 400, Nx: 4, Ny: 4}, boundary.FFFF, 4, ErrNotPositiveDefinite},
		{"single clamped element has no free dofs", Geometry{Length: 400, Width: 400, Nx: 1, Ny: 1}, boundary.CCCC, 2, ErrIllConditioned},
		{"zero length", Geometry{Length: 0, Width: 300, Nx: 4, Ny: 4}, boundary.SSSS, 2, ErrInvalidGeometry},
		{"no elements", Geometry{Length: 500, Width: 300}, boundary.SSSS, 2, ErrInvalidGeometry},
		{"unknown boundary", panel, boundary.Code(99), 2, boundary.ErrUnknownCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.geom, al7075, tt.bc, tt.geom.Mesh(), tt.modes)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestSolveTakesElementCountsFromMesh(t *testing.T) {
	g := Geometry{Length: 500, Width: 300}
	res, err := Solve(g, al7075, boundary.SSSS, Mesh{Nx: 6, Ny: 4}, 2)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Mesh() != (Mesh{Nx: 6, Ny: 4}) {
		t.Errorf("mesh %+v, want 6x4", res.Mesh())
	}
	if got := res.Geometry(); got.Nx != 6 || got.Ny != 4 {
		t.Errorf("geometry carries %dx%d elements, want 6x4", got.Nx, got.Ny)
	}

	// A stale element count on the geometry does not override the mesh.
	stale := Geometry{Length: 500, Width: 300, Nx: 10, Ny: 6}
	other, err := Solve(stale, al7075, boundary.SSSS, Mesh{Nx: 6, Ny: 4}, 2)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(other.Mode(0).Omega-res.Mode(0).Omega) > 1e-9*res.Mode(0).Omega {
		t.Errorf("omega %g vs %g", other.Mode(0).Omega, res.Mode(0).Omega)
	}
}

func TestFreeEdgesFollowTable(t *testing.T) {
	mesh := Mesh{Nx: 6, Ny: 4}
	w := func(i, j int) int { return 3 * (j*(mesh.Nx+1) + i) }
	isFree := func(free []int, dof int) bool {
		for _, d := range free {
			if d == dof {
				return true
			}
		}
		return false
	}

	tests := []struct {
		bc       boundary.Code
		leading  bool // mid-edge deflection free
		trailing bool
		side     bool
	}{
		{boundary.CFCF, false, false, true},
		{boundary.SSSF, false, true, false},
		{boundary.CCCF, false, true, false},
		{boundary.SSSS, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.bc.String(), func(t *testing.T) {
			edges, err := boundary.Edges(tt.bc)
			if err != nil {
				t.Fatal(err)
			}
			free := freeDOFs(mesh, edges)
			if got := isFree(free, w(0, mesh.Ny/2)); got != tt.leading {
				t.Errorf("leading edge free = %v, want %v", got, tt.leading)
			}
			if got := isFree(free, w(mesh.Nx, mesh.Ny/2)); got != tt.trailing {
				t.Errorf("trailing edge free = %v, want %v", got, tt.trailing)
			}
			for _, j := range []int{0, mesh.Ny} {
				if got := isFree(free, w(mesh.Nx/2, j)); got != tt.side {
					t.Errorf("side edge y=%d free = %v, want %v", j, got, tt.side)
				}
			}
		})
	}
}

func TestNonPositiveDefiniteNamesMatrix(t *testing.T) {
	g := Geometry{Length: 400, Width: 400, Nx: 4, Ny: 4}
	_, err := Solve(g, al7075, boundary.FFFF, g.Mesh(), 4)
	var npd *NonPositiveDefiniteError
	if !errors.As(err, &npd) {
		t.Fatalf("expected *NonPositiveDefiniteError, got %v", err)
	}
	if npd.Matrix != "K" {
		t.Errorf("matrix = %q, want K", npd.Matrix)
	}
}

func TestModesAreMassNormalized(t *testing.T) {
	res, err := Solve(panel, al7075, boundary.SSSS, panel.Mesh(), 3)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	in := res.Integrals()
	rhoH := al7075.ArealDensity()
	for i := 0; i < res.Len(); i++ {
		for j := 0; j < res.Len(); j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if got := rhoH * in.Mass[i][j]; math.Abs(got-want) > 1e-6 {
				t.Errorf("rhoH*Mass[%d][%d] = %g, want %g", i, j, got, want)
			}
		}
	}
}

func TestDeflectionAtCentre(t *testing.T) {
	res, err := Solve(panel, al7075, boundary.SSSS, panel.Mesh(), 1)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	w, _ := res.Deflection(0, panel.Chord()/2, panel.Span()/2)
	if w <= 0 {
		t.Errorf("fundamental mode deflection at centre = %g, want positive", w)
	}
	edge, _ := res.Deflection(0, 0, panel.Span()/2)
	if math.Abs(edge) > 1e-9*w {
		t.Errorf("deflection on a supported edge = %g, want 0", edge)
	}
}

func TestGeometryWarnings(t *testing.T) {
	tests := []struct {
		name string
		geom Geometry
		want int
	}{
		{"nominal", panel, 0},
		{"slender", Geometry{Length: 1200, Width: 200, Nx: 12, Ny: 4}, 1},
		{"stretched elements", Geometry{Length: 500, Width: 300, Nx: 2, Ny: 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.geom.Warnings(); len(got) != tt.want {
				t.Errorf("warnings = %v, want %d", got, tt.want)
			}
		})
	}
}
