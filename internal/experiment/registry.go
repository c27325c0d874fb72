package experiment

import (
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/selector"
)

type builder func(config.SolverConfig) (aero.Backend, error)

// Registry builds backends from the solver section and keeps one instance
// per method, so analyses sharing a registry share doublet lattice tables.
// It implements selector.Factory.
type Registry struct {
	solver   config.SolverConfig
	builders map[selector.Method]builder

	mu    sync.Mutex
	built map[selector.Method]aero.Backend
}

func NewRegistry(solver config.SolverConfig) *Registry {
	r := &Registry{
		solver:   solver,
		builders: make(map[selector.Method]builder),
		built:    make(map[selector.Method]aero.Backend),
	}

	r.builders[selector.Piston] = func(config.SolverConfig) (aero.Backend, error) { return aero.NewPiston(), nil }
	r.builders[selector.DoubletLattice] = func(s config.SolverConfig) (aero.Backend, error) {
		d := aero.NewDoubletLattice()
		if s.ChordBoxes > 0 {
			d.ChordBoxes = s.ChordBoxes
		}
		if s.SpanBoxes > 0 {
			d.SpanBoxes = s.SpanBoxes
		}
		if s.Correction > 0 {
			d.Correction = s.Correction
		}
		return d, nil
	}
	r.builders[selector.External] = func(s config.SolverConfig) (aero.Backend, error) {
		if s.External.Command == "" {
			return nil, fmt.Errorf("%w: solver.external.command is not set", selector.ErrNoBackend)
		}
		e := aero.NewExternal(aero.ProcessRunner{Path: s.External.Command, Args: s.External.Args})
		e.MinMach = s.External.MinMach
		if s.External.MaxMach > 0 {
			e.MaxMach = s.External.MaxMach
		}
		return e, nil
	}

	return r
}

// Register replaces the builder for m and drops any cached instance.
func (r *Registry) Register(m selector.Method, b func(config.SolverConfig) (aero.Backend, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[m] = b
	delete(r.built, m)
}

func (r *Registry) Backend(m selector.Method) (aero.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.built[m]; ok {
		return b, nil
	}
	fn, ok := r.builders[m]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", m)
	}
	b, err := fn(r.solver)
	if err != nil {
		return nil, err
	}
	r.built[m] = b
	return b, nil
}

func (r *Registry) ListBackends() []selector.Method {
	r.mu.Lock()
	defer r.mu.Unlock()
	methods := make([]selector.Method, 0, len(r.builders))
	for m := range r.builders {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(a, b int) bool { return methods[a] < methods[b] })
	return methods
}
