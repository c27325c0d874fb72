package experiment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/metrics"
	"github.com/san-kum/panelflutter/internal/modal"
	"github.com/san-kum/panelflutter/internal/selector"
)

// Outcome is everything one analysis produced.
type Outcome struct {
	Config    *config.Config
	Modes     *modal.Result
	Selection selector.Selection
	Result    *flutter.Result
	Warnings  []string
	Elapsed   time.Duration
}

// Analysis runs the modal solve, picks a backend and sweeps velocity.
type Analysis struct {
	cfg      *config.Config
	registry *Registry
	selector *selector.Selector
	engine   *flutter.Engine
	metrics  []metrics.Metric

	modesOnce sync.Once
	modes     *modal.Result
	warnings  []string
	modesErr  error
}

func New(cfg *config.Config) *Analysis {
	return NewWithRegistry(cfg, NewRegistry(cfg.Solver))
}

// NewWithRegistry shares backend instances with other analyses.
func NewWithRegistry(cfg *config.Config, r *Registry) *Analysis {
	a := &Analysis{
		cfg:      cfg,
		registry: r,
		selector: selector.New(r),
		engine:   flutter.New(cfg.Engine),
		metrics:  metrics.Defaults(),
	}
	for _, m := range a.metrics {
		a.engine.AddObserver(m)
	}
	return a
}

// Engine returns the flutter engine for adding observers.
func (a *Analysis) Engine() *flutter.Engine { return a.engine }

func (a *Analysis) Config() *config.Config { return a.cfg }

// Modes validates the configuration and solves the structure once.
func (a *Analysis) Modes() (*modal.Result, []string, error) {
	a.modesOnce.Do(func() {
		a.modes, a.warnings, a.modesErr = a.solveModes()
	})
	return a.modes, a.warnings, a.modesErr
}

func (a *Analysis) solveModes() (*modal.Result, []string, error) {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	m, err := cfg.Material.Build()
	if err != nil {
		return nil, nil, err
	}

	warnings := cfg.Geometry.Warnings()
	notes, err := boundary.Advise(cfg.Boundary, cfg.Geometry.Aspect())
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, notes...)

	start := time.Now()
	modes, err := modal.Solve(cfg.Geometry, m, cfg.Boundary, cfg.Geometry.Mesh(), cfg.Solver.Modes)
	if err != nil {
		return nil, warnings, fmt.Errorf("modal solve failed: %w", err)
	}
	log.WithFields(log.Fields{
		"boundary": cfg.Boundary,
		"modes":    modes.Len(),
		"f1_hz":    modes.Mode(0).Hz(),
		"time":     time.Since(start),
	}).Debug("Modal solve finished")
	return modes, warnings, nil
}

// Run performs the full analysis. A cancelled sweep returns its partial
// outcome together with the error.
func (a *Analysis) Run(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	modes, warnings, err := a.Modes()
	if err != nil {
		return nil, err
	}

	sel, err := a.selector.Choose(a.cfg.Flow, a.cfg.Boundary, a.cfg.Solver.Method)
	if err != nil {
		return nil, err
	}
	if sel.Warning != "" {
		log.WithField("method", sel.Method).Warn(sel.Warning)
		warnings = append(warnings, sel.Warning)
	}
	log.WithFields(log.Fields{
		"backend": sel.Backend.Name(),
		"mach":    a.cfg.Flow.Mach,
		"points":  a.cfg.Flow.Points,
	}).Debug("Starting sweep")

	res, err := a.sweep(ctx, modes, sel.Backend)
	out := &Outcome{
		Config:    a.cfg,
		Modes:     modes,
		Selection: sel,
		Result:    res,
		Warnings:  warnings,
		Elapsed:   time.Since(start),
	}
	if err != nil {
		if errors.Is(err, flutter.ErrCancelled) && res != nil {
			log.WithField("completed", len(res.Points)).Warn("Sweep cancelled")
			return out, err
		}
		return nil, err
	}

	if n := len(res.Errors()); n > 0 {
		log.WithField("failed", n).Warn("Some samples failed")
	}
	log.WithFields(log.Fields{
		"status":   res.Status,
		"velocity": res.Velocity,
		"time":     out.Elapsed,
	}).Info("Analysis finished")
	return out, nil
}

func (a *Analysis) sweep(ctx context.Context, modes *modal.Result, b aero.Backend) (*flutter.Result, error) {
	for _, m := range a.metrics {
		m.Reset()
	}
	res, err := a.engine.Sweep(ctx, modes, b, a.cfg.Flow)
	fields := log.Fields{"backend": b.Name()}
	for _, m := range a.metrics {
		fields[m.Name()] = m.Value()
	}
	log.WithFields(fields).Debug("Sweep metrics")
	return res, err
}

// DefaultMethods is what Compare runs when no methods are named: the
// regime method for the flow's Mach number against the external solver.
func (a *Analysis) DefaultMethods() ([]selector.Method, error) {
	regime := selector.MethodFor(a.cfg.Flow.Mach)
	if _, err := a.registry.Backend(selector.External); err != nil {
		return nil, fmt.Errorf("comparing against %s needs an external solver or --methods: %w", regime, err)
	}
	return []selector.Method{regime, selector.External}, nil
}

// Compare sweeps the same modes with each method that accepts the flow's
// Mach number. Methods that cannot be built or do not cover the Mach
// number are skipped with a warning.
func (a *Analysis) Compare(ctx context.Context, methods []selector.Method) (map[selector.Method]*flutter.Result, selector.Comparison, error) {
	modes, _, err := a.Modes()
	if err != nil {
		return nil, selector.Comparison{}, err
	}

	results := make(map[selector.Method]*flutter.Result)
	for _, m := range methods {
		b, err := a.registry.Backend(m)
		if err != nil {
			log.WithField("method", m).Warn(err)
			continue
		}
		if !aero.Supports(b, a.cfg.Flow.Mach) {
			log.WithFields(log.Fields{"method": m, "mach": a.cfg.Flow.Mach}).Warn("Method does not cover this Mach number")
			continue
		}
		res, err := a.sweep(ctx, modes, b)
		if err != nil {
			return results, selector.Comparison{}, fmt.Errorf("%s sweep: %w", m, err)
		}
		results[m] = res
	}

	cmp, err := selector.Compare(results)
	return results, cmp, err
}
