package config

import (
	"sort"

	"github.com/san-kum/blobsim/internal/physics"
)

// Presets are named starting points. Friction is a per-frame factor, so
// changing the sub-step count does not change the material.
var Presets = map[string]*Config{
	"classic": preset(50, 100, 40, nil),
	"lite":    preset(25, 100, 20, nil),
	"fidelity": preset(50, 100, 2000, func(p *physics.Params) {
		p.Workers = 0
	}),
	"jelly": preset(50, 100, 40, func(p *physics.Params) {
		p.Tension = 0.02
		p.Pressure = 800
		p.AreaPressure = 2
		p.DragTension = 0.05
		p.Friction = 0.82
	}),
	"stiff": preset(50, 100, 80, func(p *physics.Params) {
		p.Tension = 0.2
		p.AreaPressure = 10
		p.VertexDecay = 0.4
		p.BodyDecay = 0.03
	}),
}

func preset(n int, radius float64, subSteps int, tune func(*physics.Params)) *Config {
	cfg := DefaultConfig()
	cfg.Vertices = n
	cfg.Radius = radius
	cfg.SubSteps = subSteps
	if tune != nil {
		tune(&cfg.Tuning)
	}
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
