package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/logging"
)

// Simulator runs a windchime without a window, one Sync per frame.
type Simulator struct {
	opts      chime.Options
	metrics   []Metric
	observers []Observer
	log       *logging.Logger
}

func New(opts chime.Options, log *logging.Logger) *Simulator {
	return &Simulator{
		opts:      opts,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log.Named("sim"),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run builds a fresh windchime and records every frame. On cancellation or
// instability the partial result is returned with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	w, err := chime.Build(s.opts)
	if err != nil {
		return nil, err
	}

	frames := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		Channels: chime.Channels(),
		States:   make([]State, 0, frames+1),
		Times:    make([]float64, 0, frames+1),
		Metrics:  make(map[string]float64),
	}
	w.OnStrike(func(st chime.Strike) { result.Strikes = append(result.Strikes, st) })

	for _, m := range s.metrics {
		m.Reset()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	nextImpulse := 0.0
	t := 0.0
	x := State(w.Sample())
	s.record(result, x, t)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, w)
			return result, ctx.Err()
		default:
		}

		if cfg.ImpulseEvery > 0 && t >= nextImpulse-1e-9 {
			w.Impulse(rng)
			nextImpulse += cfg.ImpulseEvery
		}

		w.Sync(cfg.Dt)
		t += cfg.Dt
		x = w.Sample()

		if cfg.ValidateState && !x.IsValid() {
			s.finish(result, w)
			err := &StepError{Frame: i + 1, Time: t, Err: ErrUnstable}
			s.log.Error("run diverged", logging.Error(err))
			return result, err
		}
		s.record(result, x, t)
	}

	s.finish(result, w)
	s.log.Debug("run complete",
		logging.Int("frames", result.Frames),
		logging.Int("strikes", len(result.Strikes)),
		logging.Int64("seed", cfg.Seed),
	)
	return result, nil
}

func (s *Simulator) record(r *Result, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
	r.States = append(r.States, x.Clone())
	r.Times = append(r.Times, t)
}

func (s *Simulator) finish(r *Result, w *chime.Windchime) {
	r.Frames = w.Frames()
	r.Impulses = w.Impulses()
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.ImpulseEvery < 0 {
		return fmt.Errorf("%w: impulse period must not be negative, got %f", ErrInvalidConfig, cfg.ImpulseEvery)
	}
	return nil
}
