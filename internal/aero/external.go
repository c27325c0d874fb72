package aero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"
	"os/exec"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/modal"
)

// Request is what an external solver receives for one force evaluation.
type Request struct {
	Geometry         modal.Geometry `json:"geometry"`
	Boundary         string         `json:"boundary"`
	Mach             float64        `json:"mach"`
	Altitude         float64        `json:"altitude"`
	Velocity         float64        `json:"velocity"`
	ReducedFrequency float64        `json:"reduced_frequency"`
	Frequencies      []float64      `json:"frequencies"` // rad/s, one per mode
	Mesh             modal.Mesh     `json:"mesh"`
	// Shapes holds one mass-normalized nodal vector per mode: w, ∂w/∂x and
	// ∂w/∂y at node j·(nx+1)+i, with i counted from the leading edge.
	Shapes [][]float64 `json:"shapes"`
}

// Response holds Q split into real and imaginary parts, row-major.
type Response struct {
	Real [][]float64 `json:"real"`
	Imag [][]float64 `json:"imag"`
}

type Runner interface {
	Run(ctx context.Context, req Request) (Response, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, req Request) (Response, error)

func (f RunnerFunc) Run(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }

// ProcessRunner launches an executable per request, writing the request as
// JSON on stdin and decoding the response from stdout.
type ProcessRunner struct {
	Path string
	Args []string
	Dir  string
}

func (p ProcessRunner) Run(ctx context.Context, req Request) (Response, error) {
	var resp Response
	in, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("aero: encode external request: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Dir = p.Dir
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return resp, fmt.Errorf("aero: external solver %s: %w: %s", p.Path, err, msg)
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return resp, fmt.Errorf("aero: decode external response: %w", err)
	}
	return resp, nil
}

// External delegates force evaluation to a Runner. The Mach window is
// whatever the wrapped solver supports; zero values mean all Mach numbers.
type External struct {
	Runner  Runner
	MinMach float64
	MaxMach float64
	Label   string
}

func NewExternal(r Runner) *External {
	return &External{Runner: r, MaxMach: math.Inf(1)}
}

func (e *External) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return "external"
}

func (e *External) MachRange() (float64, float64) {
	hi := e.MaxMach
	if hi == 0 {
		hi = math.Inf(1)
	}
	return e.MinMach, hi
}

func (e *External) GeneralizedForces(ctx context.Context, modes *modal.Result, flow FlowCondition, velocity, k float64) (*mat.CDense, error) {
	if err := checkRegime(e, flow.Mach); err != nil {
		return nil, err
	}
	if e.Runner == nil {
		return nil, fmt.Errorf("aero: %s backend has no runner", e.Name())
	}

	resp, err := e.Runner.Run(ctx, Request{
		Geometry:         modes.Geometry(),
		Boundary:         modes.Boundary().String(),
		Mach:             flow.Mach,
		Altitude:         flow.Altitude,
		Velocity:         velocity,
		ReducedFrequency: k,
		Frequencies:      modes.Omegas(),
		Mesh:             modes.Mesh(),
		Shapes:           shapes(modes),
	})
	if err != nil {
		return nil, err
	}

	n := modes.Len()
	if err := checkSquare(resp.Real, n, "real"); err != nil {
		return nil, err
	}
	if resp.Imag != nil {
		if err := checkSquare(resp.Imag, n, "imag"); err != nil {
			return nil, err
		}
	}

	q := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			im := 0.0
			if resp.Imag != nil {
				im = resp.Imag[i][j]
			}
			v := complex(resp.Real[i][j], im)
			if cmplx.IsNaN(v) || cmplx.IsInf(v) {
				return nil, &NumericalSingularityError{Backend: e.Name(), ReducedFrequency: k, Condition: math.Inf(1)}
			}
			q.Set(i, j, v)
		}
	}
	return q, nil
}

func shapes(modes *modal.Result) [][]float64 {
	out := make([][]float64, modes.Len())
	for i := range out {
		out[i] = modes.Mode(i).Shape
	}
	return out
}

func checkSquare(m [][]float64, n int, part string) error {
	if len(m) != n {
		return fmt.Errorf("aero: external %s part has %d rows, want %d", part, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("aero: external %s row %d has %d columns, want %d", part, i, len(row), n)
		}
	}
	return nil
}
