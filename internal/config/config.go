package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/material"
	"github.com/san-kum/panelflutter/internal/modal"
	"github.com/san-kum/panelflutter/internal/selector"
)

const (
	DefaultLength    = 500.0
	DefaultWidth     = 300.0
	DefaultNx        = 10
	DefaultNy        = 6
	DefaultThickness = 2.0
	DefaultMach      = 0.8
	DefaultAltitude  = 10000.0
	DefaultVMin      = 50.0
	DefaultVMax      = 300.0
	DefaultPoints    = 20
)

// Aluminium 7075-T6.
const (
	aluminumDensity = 2810.0
	aluminumModulus = 71.7e9
	aluminumPoisson = 0.33
)

type Config struct {
	Name     string             `yaml:"name,omitempty"`
	Geometry modal.Geometry     `yaml:"geometry"`
	Material MaterialConfig     `yaml:"material"`
	Boundary boundary.Code      `yaml:"boundary"`
	Flow     aero.FlowCondition `yaml:"flow"`
	Solver   SolverConfig       `yaml:"solver"`
	Engine   flutter.Options    `yaml:"engine"`
}

type MaterialConfig struct {
	Type      string  `yaml:"type"` // isotropic or laminate
	Density   float64 `yaml:"density,omitempty"`
	Modulus   float64 `yaml:"modulus,omitempty"`
	Poisson   float64 `yaml:"poisson,omitempty"`
	Thickness float64 `yaml:"thickness,omitempty"` // mm

	// Laminates list their plies, or give one ply and the half-stack
	// angles of a symmetric layup.
	Plies []material.Ply `yaml:"plies,omitempty"`
	Ply   *material.Ply  `yaml:"ply,omitempty"`
	Layup []float64      `yaml:"layup,omitempty"`
}

type SolverConfig struct {
	Method selector.Method `yaml:"method"`
	Modes  int             `yaml:"modes"`
	// Doublet lattice sizing; zero keeps the defaults.
	ChordBoxes int            `yaml:"chord_boxes,omitempty"`
	SpanBoxes  int            `yaml:"span_boxes,omitempty"`
	Correction float64        `yaml:"correction,omitempty"`
	External   ExternalConfig `yaml:"external,omitempty"`
}

// ExternalConfig launches a solver process speaking JSON on stdin/stdout.
type ExternalConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	MinMach float64  `yaml:"min_mach,omitempty"`
	MaxMach float64  `yaml:"max_mach,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Geometry: modal.Geometry{Length: DefaultLength, Width: DefaultWidth, Nx: DefaultNx, Ny: DefaultNy},
		Material: MaterialConfig{
			Type:      "isotropic",
			Density:   aluminumDensity,
			Modulus:   aluminumModulus,
			Poisson:   aluminumPoisson,
			Thickness: DefaultThickness,
		},
		Boundary: boundary.SSSS,
		Flow: aero.FlowCondition{
			Mach:        DefaultMach,
			Altitude:    DefaultAltitude,
			VelocityMin: DefaultVMin,
			VelocityMax: DefaultVMax,
			Points:      DefaultPoints,
		},
		Solver: SolverConfig{Method: selector.Auto, Modes: modal.DefaultModes},
		Engine: flutter.Options{
			Tolerance:     flutter.DefaultTolerance,
			MaxIterations: flutter.DefaultMaxIterations,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build returns the material the section describes.
func (m MaterialConfig) Build() (material.Material, error) {
	var out material.Material
	switch strings.ToLower(m.Type) {
	case "", "isotropic":
		out = material.Isotropic{Density: m.Density, Modulus: m.Modulus, Poisson: m.Poisson, ThicknessMM: m.Thickness}
	case "laminate":
		switch {
		case len(m.Plies) > 0:
			out = material.NewLaminate(m.Plies...)
		case m.Ply != nil && len(m.Layup) > 0:
			out = material.SymmetricLayup(*m.Ply, m.Layup...)
		default:
			return nil, &material.InvalidLaminateError{Ply: -1, Reason: "no plies"}
		}
	default:
		return nil, fmt.Errorf("unknown material type: %s", m.Type)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if _, err := c.Material.Build(); err != nil {
		return err
	}
	if _, err := boundary.Lookup(c.Boundary); err != nil {
		return err
	}
	if err := c.Flow.Validate(); err != nil {
		return err
	}
	if c.Solver.Modes < 1 {
		return fmt.Errorf("solver.modes must be at least 1, got %d", c.Solver.Modes)
	}
	if c.Solver.Method == selector.External && c.Solver.External.Command == "" {
		return fmt.Errorf("solver.external.command is required for the external method")
	}
	return nil
}

func (c *Config) Clone() *Config {
	out := *c
	out.Material.Plies = slices.Clone(c.Material.Plies)
	out.Material.Layup = slices.Clone(c.Material.Layup)
	if c.Material.Ply != nil {
		p := *c.Material.Ply
		out.Material.Ply = &p
	}
	out.Solver.External.Args = slices.Clone(c.Solver.External.Args)
	return &out
}
