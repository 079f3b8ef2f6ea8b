package chime

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Impulse pushes the sail with a random central impulse, each component
// uniform in [-scale, scale), and wakes it. The applied impulse is returned.
func (w *Windchime) Impulse(rng *rand.Rand) mgl64.Vec3 {
	s := w.opts.ImpulseScale
	imp := mgl64.Vec3{
		rng.Float64()*2*s - s,
		rng.Float64()*2*s - s,
		rng.Float64()*2*s - s,
	}
	body := w.Sail.Body
	body.ApplyCentralImpulse(imp)
	body.Activate()
	w.impulses++
	return imp
}

// Impulses is the number of impulses applied since Build.
func (w *Windchime) Impulses() int { return w.impulses }
