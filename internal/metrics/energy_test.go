package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

func sample(set map[int]float64) sim.State {
	x := make(sim.State, chime.NumChannels)
	for i, v := range set {
		x[i] = v
	}
	return x
}

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()
	m.Observe(sample(map[int]float64{chime.KineticEnergy: 2}), 0)
	m.Observe(sample(map[int]float64{chime.KineticEnergy: 4}), 0.1)

	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("expected mean energy 3, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestPeakEnergy(t *testing.T) {
	m := NewPeakEnergy()
	for _, e := range []float64{1, 7, 3} {
		m.Observe(sample(map[int]float64{chime.KineticEnergy: e}), 0)
	}
	if m.Value() != 7 {
		t.Errorf("expected peak 7, got %f", m.Value())
	}
}

func TestChimeMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metric  sim.Metric
		samples []map[int]float64
		want    float64
	}{
		{
			"strikes keep the last count",
			NewStrikes(),
			[]map[int]float64{{chime.StrikeCount: 1}, {chime.StrikeCount: 4}},
			4,
		},
		{
			"sail excursion from start",
			NewSailExcursion(),
			[]map[int]float64{
				{chime.SailX: 1, chime.SailZ: 1},
				{chime.SailX: 4, chime.SailZ: 5},
				{chime.SailX: 1, chime.SailZ: 2},
			},
			5,
		},
		{
			"tube swing maximum",
			NewTubeSwing(),
			[]map[int]float64{{chime.TubeSwing: 0.1}, {chime.TubeSwing: 0.3}, {chime.TubeSwing: 0.2}},
			0.3,
		},
		{
			"stability fraction",
			NewStability(chime.TubeSwing, 0.5),
			[]map[int]float64{{chime.TubeSwing: 0.1}, {chime.TubeSwing: 0.9}, {chime.SailX: math.NaN()}, {}},
			0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, s := range tt.samples {
				tt.metric.Observe(sample(s), float64(i))
			}
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
			tt.metric.Reset()
		})
	}
}

func TestStabilityEmpty(t *testing.T) {
	if v := NewStability(chime.TubeSwing, 1).Value(); v != 1 {
		t.Errorf("expected 1 with no samples, got %f", v)
	}
}

func TestDefaultNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
