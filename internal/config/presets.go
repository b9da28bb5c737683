package config

import (
	"sort"

	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/spawn"
)

func preset(particles int, shape string, spread, speed float64, tune func(*particle.Constants)) *Config {
	cfg := DefaultConfig()
	cfg.Particles = particles
	cfg.Spawn = spawn.Config{Shape: shape, Spread: spread, Speed: speed}
	if tune != nil {
		tune(&cfg.Constants)
	}
	return cfg
}

var Presets = map[string]*Config{
	"default": preset(DefaultParticles, "uniform", 0.9, 0.5, nil),
	"swarm":   preset(65536, "uniform", 1.0, 1.0, nil),
	"burst":   preset(8192, "burst", 0.5, 1.0, nil),
	"ring": preset(4096, "ring", 0.8, 0.6, func(c *particle.Constants) {
		c.Damping = 0.999
	}),
	"calm": preset(2048, "disk", 0.6, 0.1, func(c *particle.Constants) {
		c.Gravity = 0.02
		c.PulseRate = 0.5
	}),
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
