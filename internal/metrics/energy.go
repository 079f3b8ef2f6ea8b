package metrics

import (
	"math"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

// Energy is the mean kinetic energy of the chime over a run.
type Energy struct {
	name    string
	samples int
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, t float64) {
	e.total += x[chime.KineticEnergy]
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// PeakEnergy is the largest kinetic energy seen.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (p *PeakEnergy) Name() string { return p.name }

func (p *PeakEnergy) Observe(x sim.State, t float64) {
	p.peak = math.Max(p.peak, x[chime.KineticEnergy])
}

func (p *PeakEnergy) Value() float64 { return p.peak }

func (p *PeakEnergy) Reset() { p.peak = 0 }
