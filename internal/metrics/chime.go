package metrics

import (
	"math"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

// Strikes is the number of clapper-tube strikes by the end of a run.
type Strikes struct {
	name  string
	count float64
}

func NewStrikes() *Strikes {
	return &Strikes{name: "strikes"}
}

func (s *Strikes) Name() string { return s.name }

func (s *Strikes) Observe(x sim.State, t float64) {
	s.count = x[chime.StrikeCount]
}

func (s *Strikes) Value() float64 { return s.count }

func (s *Strikes) Reset() { s.count = 0 }

// SailExcursion is the largest horizontal distance of the sail from where
// it started.
type SailExcursion struct {
	name      string
	x0, z0    float64
	started   bool
	excursion float64
}

func NewSailExcursion() *SailExcursion {
	return &SailExcursion{name: "sail_excursion"}
}

func (s *SailExcursion) Name() string { return s.name }

func (s *SailExcursion) Observe(x sim.State, t float64) {
	if !s.started {
		s.x0, s.z0 = x[chime.SailX], x[chime.SailZ]
		s.started = true
	}
	d := math.Hypot(x[chime.SailX]-s.x0, x[chime.SailZ]-s.z0)
	s.excursion = math.Max(s.excursion, d)
}

func (s *SailExcursion) Value() float64 { return s.excursion }

func (s *SailExcursion) Reset() {
	s.started = false
	s.excursion = 0
}

// TubeSwing is the largest tube angle from vertical, in radians.
type TubeSwing struct {
	name string
	max  float64
}

func NewTubeSwing() *TubeSwing {
	return &TubeSwing{name: "tube_swing"}
}

func (s *TubeSwing) Name() string { return s.name }

func (s *TubeSwing) Observe(x sim.State, t float64) {
	s.max = math.Max(s.max, x[chime.TubeSwing])
}

func (s *TubeSwing) Value() float64 { return s.max }

func (s *TubeSwing) Reset() { s.max = 0 }

// Default returns a fresh set of the standard metrics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewPeakEnergy(),
		NewStrikes(),
		NewSailExcursion(),
		NewTubeSwing(),
		NewStability(chime.TubeSwing, 1.2),
	}
}
