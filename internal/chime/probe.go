package chime

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/physics"
)

// Channel indices into Sample.
const (
	SailX = iota
	SailY
	SailZ
	ClapperX
	ClapperZ
	ClapperOffset
	ConeTilt
	TubeSwing
	KineticEnergy
	StrikeCount
	NumChannels
)

var channelNames = [NumChannels]string{
	"sail_x",
	"sail_y",
	"sail_z",
	"clapper_x",
	"clapper_z",
	"clapper_offset",
	"cone_tilt",
	"tube_swing",
	"kinetic_energy",
	"strikes",
}

// Channels names the values Sample returns, in order.
func Channels() []string {
	out := make([]string, NumChannels)
	copy(out, channelNames[:])
	return out
}

// ChannelIndex looks a channel up by name.
func ChannelIndex(name string) (int, bool) {
	for i, n := range channelNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Sample reads the observable state of the windchime. Angles are radians
// from vertical; the clapper offset is its horizontal distance from the hook
// axis.
func (w *Windchime) Sample() []float64 {
	out := make([]float64, NumChannels)
	sail := w.Sail.Body.Position()
	clapper := w.Clapper.Body.Position()

	out[SailX] = sail.X()
	out[SailY] = sail.Y()
	out[SailZ] = sail.Z()
	out[ClapperX] = clapper.X()
	out[ClapperZ] = clapper.Z()
	out[ClapperOffset] = math.Hypot(clapper.X(), clapper.Z())
	out[ConeTilt] = tilt(w.Cone.Body)
	for _, t := range w.Tubes {
		out[TubeSwing] = math.Max(out[TubeSwing], tilt(t.Body))
	}
	out[KineticEnergy] = w.KineticEnergy()
	out[StrikeCount] = float64(w.strikes)
	return out
}

// KineticEnergy sums the rigid and rope kinetic energy.
func (w *Windchime) KineticEnergy() float64 {
	e := 0.0
	for _, m := range w.Dynamic {
		e += m.Body.KineticEnergy()
	}
	for _, r := range w.Ropes {
		e += r.Soft.KineticEnergy()
	}
	return e
}

func tilt(b *physics.RigidBody) float64 {
	up := b.Rotation().Rotate(mgl64.Vec3{0, 1, 0})
	return math.Acos(mgl64.Clamp(up.Y(), -1, 1))
}
