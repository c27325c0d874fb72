// Package flutter locates the onset of panel flutter by sweeping velocity
// and solving the aeroelastic eigenproblem with the PK method at each
// sample.
package flutter

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/modal"
)

const (
	DefaultTolerance     = 1e-4
	DefaultMaxIterations = 40
)

// Options configure the PK iteration and the sample worker pool.
type Options struct {
	// Tolerance is the relative frequency change that ends a PK iteration.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	// MaxIterations caps the PK iteration per mode and sample.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
	// Workers bounds concurrent samples; zero uses every CPU.
	Workers int `yaml:"workers" json:"workers"`
}

func DefaultOptions() Options {
	return Options{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Workers:       runtime.NumCPU(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}

// Observer is notified as samples complete. Calls are serialized but
// arrive in completion order, not velocity order.
type Observer interface {
	OnSample(p Point, done, total int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Point, done, total int)

func (f ObserverFunc) OnSample(p Point, done, total int) { f(p, done, total) }

type Engine struct {
	opts      Options
	observers []Observer
}

func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

func (e *Engine) Options() Options       { return e.opts }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Sweep evaluates the flow's evenly spaced velocities and reports the first
// damping crossing. Per-sample failures stay on their points; only input
// errors and cancellation are returned as errors. On cancellation the
// partial result is returned alongside a *CancelledError.
func (e *Engine) Sweep(ctx context.Context, modes *modal.Result, backend aero.Backend, flow aero.FlowCondition) (*Result, error) {
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return e.SweepVelocities(ctx, modes, backend, flow, flow.Velocities())
}

// SweepVelocities is Sweep over explicit velocities in any order. Samples
// are sorted by velocity before crossing detection.
func (e *Engine) SweepVelocities(ctx context.Context, modes *modal.Result, backend aero.Backend, flow aero.FlowCondition, velocities []float64) (*Result, error) {
	if len(velocities) < 2 {
		return nil, &aero.InsufficientRangeError{Points: len(velocities), Min: flow.VelocityMin, Max: flow.VelocityMax}
	}
	for _, v := range velocities {
		if !(v > 0) {
			return nil, &aero.InsufficientRangeError{Points: len(velocities), Min: v, Max: flow.VelocityMax}
		}
	}
	if modes == nil || modes.Len() == 0 {
		return nil, fmt.Errorf("flutter: no modes to sweep")
	}
	if backend == nil {
		return nil, fmt.Errorf("flutter: no aerodynamic backend")
	}
	if !aero.Supports(backend, flow.Mach) {
		lo, hi := backend.MachRange()
		return nil, &aero.UnsupportedFlowRegimeError{Backend: backend.Name(), Mach: flow.Mach, Min: lo, Max: hi}
	}
	air, err := flow.Atmosphere()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aero.ErrInvalidFlow, err)
	}

	total := len(velocities)
	points := make([]Point, total)
	done := make([]bool, total)
	omegas := modes.Omegas()
	chord := modes.Geometry().Chord()

	var mu sync.Mutex
	completed := 0

	g := new(errgroup.Group)
	g.SetLimit(e.opts.Workers)
	for i, v := range velocities {
		if ctx.Err() != nil {
			break
		}
		i, v := i, v
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			pb := &pkProblem{
				modes:    modes,
				backend:  backend,
				flow:     flow,
				omegas:   omegas,
				chord:    chord,
				velocity: v,
				q:        air.DynamicPressure(v),
			}
			p, ok := e.sample(ctx, pb)
			if !ok {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			points[i], done[i] = p, true
			completed++
			for _, o := range e.observers {
				o.OnSample(p, completed, total)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Backend: backend.Name(), Flow: flow}
	for i := range points {
		if done[i] {
			result.Points = append(result.Points, points[i])
		}
	}
	sort.SliceStable(result.Points, func(a, b int) bool {
		return result.Points[a].Velocity < result.Points[b].Velocity
	})

	if err := ctx.Err(); err != nil {
		result.Status = Cancelled
		return result, &CancelledError{Completed: len(result.Points), Total: total, Err: err}
	}

	if c, ok := detect(result.Points); ok {
		result.Status = Found
		result.Velocity = c.velocity
		result.Frequency = c.frequency
		result.Mode = c.mode
		result.BelowRange = c.below
	}
	return result, nil
}

// sample tracks every mode at one velocity. It reports false when the
// context ended mid-sample, in which case the point is discarded.
func (e *Engine) sample(ctx context.Context, pb *pkProblem) (Point, bool) {
	p := Point{
		Velocity:        pb.velocity,
		DynamicPressure: pb.q,
		Roots:           make([]Root, len(pb.omegas)),
	}
	var errs []error
	for j := range pb.omegas {
		root, err := e.track(ctx, pb, j)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Point{}, false
			}
			var cf *ConvergenceFailureError
			if !errors.As(err, &cf) {
				err = &SampleError{Velocity: pb.velocity, Mode: j, Err: err}
			}
			errs = append(errs, err)
		}
		p.Roots[j] = root
	}
	p.Err = errors.Join(errs...)
	return p, true
}
