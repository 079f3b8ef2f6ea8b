package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/chimesim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt               = 1.0 / 60.0
	DefaultDuration         = 20.0
	DefaultMaxSubSteps      = 10
	DefaultFixedTimeStep    = 1.0 / 60.0
	DefaultSolverIterations = 10
	DefaultSubsteps         = 2
	DefaultSettleIterations = 200
	DefaultSettleTime       = 10.0
	DefaultGravity          = -9.8
	DefaultImpulseScale     = 4.0
	DefaultMargin           = 0.05
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Dt               float64       `yaml:"dt"`
	Duration         float64       `yaml:"duration"`
	MaxSubSteps      int           `yaml:"max_sub_steps"`
	FixedTimeStep    float64       `yaml:"fixed_time_step"`
	SolverIterations int           `yaml:"solver_iterations"`
	Substeps         int           `yaml:"substeps"`
	SettleIterations int           `yaml:"settle_iterations"`
	SettleTime       float64       `yaml:"settle_time"`
	Seed             int64         `yaml:"seed"`
	ImpulseEvery     float64       `yaml:"impulse_every"`
	ImpulseScale     float64       `yaml:"impulse_scale"`
	Gravity          float64       `yaml:"gravity"`
	Scene            SceneConfig   `yaml:"scene"`
	DebugMode        []string      `yaml:"debug_mode"`
	Audio            AudioConfig   `yaml:"audio"`
	Storage          StorageConfig `yaml:"storage"`
}

// SceneConfig holds the windchime's tunable dimensions and masses.
type SceneConfig struct {
	TubeCount     int     `yaml:"tube_count"`
	TubeMass      float64 `yaml:"tube_mass"`
	TubeRadius    float64 `yaml:"tube_radius"`
	TubeLength    float64 `yaml:"tube_length"`
	HangingRadius float64 `yaml:"hanging_radius"`
	ConeMass      float64 `yaml:"cone_mass"`
	ClapperMass   float64 `yaml:"clapper_mass"`
	SailMass      float64 `yaml:"sail_mass"`
	SailFriction  float64 `yaml:"sail_friction"`
	RopeSegments  int     `yaml:"rope_segments"`
	Rope1Mass     float64 `yaml:"rope1_mass"`
	Rope2Mass     float64 `yaml:"rope2_mass"`
	Margin        float64 `yaml:"margin"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"`
}

func DefaultScene() SceneConfig {
	return SceneConfig{
		TubeCount:     8,
		TubeMass:      3,
		TubeRadius:    0.1,
		TubeLength:    4,
		HangingRadius: 1.5,
		ConeMass:      60,
		ClapperMass:   10,
		SailMass:      1,
		SailFriction:  0.5,
		RopeSegments:  6,
		Rope1Mass:     4,
		Rope2Mass:     8,
		Margin:        DefaultMargin,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		MaxSubSteps:      DefaultMaxSubSteps,
		FixedTimeStep:    DefaultFixedTimeStep,
		SolverIterations: DefaultSolverIterations,
		Substeps:         DefaultSubsteps,
		SettleIterations: DefaultSettleIterations,
		SettleTime:       DefaultSettleTime,
		ImpulseScale:     DefaultImpulseScale,
		Gravity:          DefaultGravity,
		Scene:            DefaultScene(),
		Audio:            AudioConfig{Volume: 0.5},
		Storage:          StorageConfig{Dir: "./data"},
	}
}

// Load reads a yaml file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate reports the first out-of-range field, wrapping ErrInvalid.
func (c *Config) Validate() error {
	checks := []struct {
		ok    bool
		field string
		msg   string
	}{
		{c.Dt > 0, "dt", "must be positive"},
		{c.Duration > 0, "duration", "must be positive"},
		{c.MaxSubSteps >= 0, "max_sub_steps", "must not be negative"},
		{c.FixedTimeStep > 0, "fixed_time_step", "must be positive"},
		{c.SolverIterations > 0, "solver_iterations", "must be positive"},
		{c.Substeps > 0, "substeps", "must be positive"},
		{c.SettleIterations >= 0, "settle_iterations", "must not be negative"},
		{c.SettleTime >= 0, "settle_time", "must not be negative"},
		{c.ImpulseEvery >= 0, "impulse_every", "must not be negative"},
		{c.ImpulseScale >= 0, "impulse_scale", "must not be negative"},
		{c.Scene.TubeCount >= 1, "scene.tube_count", "must be at least 1"},
		{c.Scene.TubeMass > 0, "scene.tube_mass", "must be positive"},
		{c.Scene.TubeRadius > 0, "scene.tube_radius", "must be positive"},
		{c.Scene.TubeLength > 0, "scene.tube_length", "must be positive"},
		{c.Scene.ConeMass > 0, "scene.cone_mass", "must be positive"},
		{c.Scene.ClapperMass > 0, "scene.clapper_mass", "must be positive"},
		{c.Scene.SailMass > 0, "scene.sail_mass", "must be positive"},
		{c.Scene.RopeSegments >= 1, "scene.rope_segments", "must be at least 1"},
		{c.Scene.Rope1Mass > 0, "scene.rope1_mass", "must be positive"},
		{c.Scene.Rope2Mass > 0, "scene.rope2_mass", "must be positive"},
		{c.Scene.Margin >= 0, "scene.margin", "must not be negative"},
		{c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume", "must be within [0, 1]"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s %s", ErrInvalid, ch.field, ch.msg)
		}
	}
	for _, name := range c.DebugMode {
		if _, ok := physics.ParseDebugMode(name); !ok {
			return fmt.Errorf("%w: debug_mode unknown flag %q", ErrInvalid, name)
		}
	}
	return nil
}
