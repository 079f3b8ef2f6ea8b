package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/config"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrUnstable      = errors.New("sim: non-finite state")
)

// State is one sample of the chime channels, in chime.Channels order.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Config drives a headless run. Dt is the frame time handed to Sync.
// ImpulseEvery > 0 pushes the sail every that many seconds, starting at t=0.
type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ImpulseEvery  float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            config.DefaultDt,
		Duration:      config.DefaultDuration,
		ValidateState: true,
	}
}

// ConfigFrom copies the run settings of a file config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Seed:          cfg.Seed,
		ImpulseEvery:  cfg.ImpulseEvery,
		ValidateState: true,
	}
}

type Result struct {
	Channels []string
	States   []State
	Times    []float64
	Metrics  map[string]float64
	Strikes  []chime.Strike
	Impulses int
	Frames   int
}

// Channel returns the recorded series of a named channel.
func (r *Result) Channel(name string) ([]float64, bool) {
	idx := -1
	for i, c := range r.Channels {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		out[i] = s[idx]
	}
	return out, true
}

// StepError locates a failure in a run.
type StepError struct {
	Frame int
	Time  float64
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
