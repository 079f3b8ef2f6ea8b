package metrics

import (
	"math"

	"github.com/san-kum/chimesim/internal/sim"
)

// Stability is the fraction of samples where a channel stays within
// threshold and every channel is finite.
type Stability struct {
	name       string
	channel    int
	threshold  float64
	violations int
	samples    int
}

func NewStability(channel int, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		channel:   channel,
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.State, t float64) {
	s.samples++
	if !x.IsValid() || math.Abs(x[s.channel]) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

var _ sim.Metric = (*Stability)(nil)
