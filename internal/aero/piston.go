package aero

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/panelflutter/internal/modal"
)

// Piston is first-order piston theory. The local pressure coefficient is
// (2/β)(∂w/∂x + (1/V)∂w/∂t), so Q needs only the surface integrals of the
// modes and costs O(N²) per call.
type Piston struct {
	MinMach    float64
	Correction float64
}

func NewPiston() *Piston {
	return &Piston{MinMach: PistonMinMach, Correction: 1}
}

func (p *Piston) Name() string { return "piston" }

func (p *Piston) MachRange() (float64, float64) { return p.MinMach, math.Inf(1) }

func (p *Piston) GeneralizedForces(ctx context.Context, modes *modal.Result, flow FlowCondition, velocity, k float64) (*mat.CDense, error) {
	if err := checkRegime(p, flow.Mach); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	beta := math.Sqrt(flow.Mach*flow.Mach - 1)
	corr := p.Correction
	if corr == 0 {
		corr = 1
	}
	return pistonForces(modes, corr*2/beta, k), nil
}

// pistonForces projects a local pressure law Δcp = scale·(∂w/∂x + (1/V)∂w/∂t)
// onto the modes.
func pistonForces(modes *modal.Result, scale, k float64) *mat.CDense {
	phase := 2 * k / modes.Geometry().Chord()
	in := modes.Integrals()
	n := modes.Len()
	q := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			q.Set(i, j, complex(scale*in.Slope[i][j], scale*phase*in.Mass[i][j]))
		}
	}
	return q
}
