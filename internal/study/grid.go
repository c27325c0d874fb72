// Package study runs a full flutter analysis at every point of a grid over
// configuration parameters.
package study

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/experiment"
	"github.com/san-kum/panelflutter/internal/flutter"
)

// setters lists the parameters a grid may vary.
var setters = map[string]func(*config.Config, float64) error{
	"thickness": func(c *config.Config, v float64) error {
		if strings.ToLower(c.Material.Type) == "laminate" {
			return fmt.Errorf("thickness cannot vary on a laminate")
		}
		c.Material.Thickness = v
		return nil
	},
	"altitude": func(c *config.Config, v float64) error { c.Flow.Altitude = v; return nil },
	"mach":     func(c *config.Config, v float64) error { c.Flow.Mach = v; return nil },
	"length":   func(c *config.Config, v float64) error { c.Geometry.Length = v; return nil },
	"width":    func(c *config.Config, v float64) error { c.Geometry.Width = v; return nil },
}

func Parameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseParam reads "name=v1,v2,...".
func ParseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid parameter %q, want name=v1,v2", s)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := setters[name]; !ok {
		return "", nil, fmt.Errorf("unknown parameter: %s", name)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

type Case struct {
	Params map[string]float64
	Result *flutter.Result
	Err    error
}

type GridSearch struct {
	base       *config.Config
	paramNames []string
	ranges     [][]float64
	registry   *experiment.Registry
}

func NewGridSearch(base *config.Config, params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	return &GridSearch{
		base:       base,
		paramNames: params,
		ranges:     ranges,
		registry:   experiment.NewRegistry(base.Solver),
	}, nil
}

// Size is the number of cases in the grid.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Run evaluates every case in grid order. A failing case is recorded and
// the search continues; cancellation stops it and returns the cases so far.
func (g *GridSearch) Run(ctx context.Context) ([]Case, error) {
	cases := make([]Case, 0, g.Size())
	err := g.searchRecursive(ctx, 0, make(map[string]float64), &cases)
	return cases, err
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, cases *[]Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		c := Case{Params: current}
		cfg := g.base.Clone()
		for name, v := range current {
			if err := setters[name](cfg, v); err != nil {
				c.Err = err
				*cases = append(*cases, c)
				return nil
			}
		}

		out, err := experiment.NewWithRegistry(cfg, g.registry).Run(ctx)
		if out != nil {
			c.Result = out.Result
		}
		c.Err = err
		*cases = append(*cases, c)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, cases); err != nil {
			return err
		}
	}
	return nil
}

// Critical returns the case with the lowest flutter speed.
func Critical(cases []Case) (Case, bool) {
	best := math.Inf(1)
	var out Case
	found := false
	for _, c := range cases {
		if c.Err != nil || c.Result == nil || !c.Result.Found() {
			continue
		}
		if c.Result.Velocity < best {
			best, out, found = c.Result.Velocity, c, true
		}
	}
	return out, found
}
