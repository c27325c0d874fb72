package config

import (
	"sort"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/material"
	"github.com/san-kum/panelflutter/internal/modal"
)

// T300/5208 carbon/epoxy, 0.125 mm plies.
var cfrpPly = material.Ply{
	ThicknessMM: 0.125,
	E1:          181e9,
	E2:          10.3e9,
	G12:         7.17e9,
	Nu12:        0.28,
	Density:     1600,
}

var Presets = map[string]map[string]*Config{
	"aluminum": {
		"reference": DefaultConfig(),
		"thick_clamped": with(func(c *Config) {
			c.Geometry.Nx = 8
			c.Material.Thickness = 6
			c.Boundary = boundary.CCCC
			c.Flow = aero.FlowCondition{Mach: 0.3, Altitude: 0, VelocityMin: 10, VelocityMax: 20, Points: 6}
		}),
	},
	"composite": {
		"cfrp_quasi_iso": with(func(c *Config) {
			p := cfrpPly
			c.Material = MaterialConfig{Type: "laminate", Ply: &p, Layup: []float64{0, 45, -45, 90, 0, 45, -45, 90}}
			c.Flow.VelocityMax = 400
		}),
	},
	"supersonic": {
		"skin": with(func(c *Config) {
			c.Geometry = modal.Geometry{Length: 400, Width: 400, Nx: 8, Ny: 8}
			c.Material.Thickness = 1.5
			c.Flow = aero.FlowCondition{Mach: 2.0, Altitude: 15000, VelocityMin: 300, VelocityMax: 1500, Points: 25}
		}),
	},
}

func with(edit func(*Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.Name = group + "/" + preset
	return out
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
