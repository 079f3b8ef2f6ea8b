package chime

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/physics"
)

// Strike is the clapper hitting a tube.
type Strike struct {
	Tube  int
	Speed float64
	Time  float64
	Point mgl64.Vec3
}

// OnStrike registers fn for every clapper-tube contact begin.
func (w *Windchime) OnStrike(fn func(Strike)) {
	w.onStrike = append(w.onStrike, fn)
}

// Strikes is the number of strikes since Build.
func (w *Windchime) Strikes() int { return w.strikes }

func (w *Windchime) detectStrike(ev physics.ContactEvent) {
	clapper := w.Clapper.Body
	var other *physics.RigidBody
	switch clapper {
	case ev.A:
		other = ev.B
	case ev.B:
		other = ev.A
	default:
		return
	}
	tube, ok := w.tubeIndex[other]
	if !ok {
		return
	}

	w.strikes++
	s := Strike{Tube: tube, Speed: ev.Speed, Time: ev.Time, Point: ev.Point}
	w.log.Debug("strike",
		logging.Int("tube", tube),
		logging.Float64("speed", ev.Speed),
		logging.Float64("t", ev.Time),
	)
	for _, fn := range w.onStrike {
		fn(s)
	}
}
