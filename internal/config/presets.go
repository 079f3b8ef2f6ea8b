package config

import "sort"

// Presets tweak the defaults into named scenarios.
var Presets = map[string]func(*Config){
	"calm": func(c *Config) {
		c.Duration = 30
		c.ImpulseEvery = 0
	},
	"breezy": func(c *Config) {
		c.Duration = 30
		c.ImpulseEvery = 2
	},
	"storm": func(c *Config) {
		c.Duration = 30
		c.ImpulseEvery = 0.5
		c.ImpulseScale = 8
	},
	"heavy": func(c *Config) {
		c.ImpulseEvery = 1.5
		c.Scene.TubeMass = 6
		c.Scene.ClapperMass = 20
		c.Scene.SailMass = 2
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
