package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/chimesim/internal/analysis"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/metrics"
	"github.com/san-kum/chimesim/internal/sim"
	"github.com/san-kum/chimesim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero fields keep the base config's value; Params
// uses the names in analysis.Params.
type ScenarioStep struct {
	Preset       string             `yaml:"preset"`
	Duration     float64            `yaml:"duration"`
	Dt           float64            `yaml:"dt"`
	Seed         int64              `yaml:"seed"`
	ImpulseEvery float64            `yaml:"impulse_every"`
	Params       map[string]float64 `yaml:"params"`
	SaveAs       string             `yaml:"save_as"`
}

// StepResult pairs a finished step with its saved run id, if any.
type StepResult struct {
	Step   int
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// resolve builds the config and chime options for one step.
func (s ScenarioStep) resolve(base *config.Config) (*config.Config, chime.Options, error) {
	cfg := *base
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, chime.Options{}, fmt.Errorf("unknown preset %q", s.Preset)
		}
		p.Storage = base.Storage
		p.Seed = base.Seed
		cfg = *p
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.ImpulseEvery > 0 {
		cfg.ImpulseEvery = s.ImpulseEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, chime.Options{}, err
	}

	opts := chime.OptionsFromConfig(&cfg)
	for name, v := range s.Params {
		set, ok := analysis.Params[name]
		if !ok {
			return nil, chime.Options{}, fmt.Errorf("unknown parameter %q", name)
		}
		set(&opts, v)
	}
	return &cfg, opts, nil
}

// RunScenario executes the steps in order. Steps with save_as are written
// to store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, store *storage.Store, log *logging.Logger) ([]StepResult, error) {
	log = log.Named("scenario")
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, opts, err := step.resolve(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		opts.Logger = log

		s := sim.New(opts, log)
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		rc := sim.ConfigFrom(cfg)
		result, err := s.Run(ctx, rc)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Result: result}
		if step.SaveAs != "" && store != nil {
			if sr.RunID, err = store.Save(step.SaveAs, rc, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		log.Info("step done",
			logging.Int("step", i+1),
			logging.Int("of", len(scenario.Steps)),
			logging.Int("strikes", len(result.Strikes)),
			logging.String("run_id", sr.RunID),
		)
		results = append(results, sr)
	}
	return results, nil
}
