package analysis

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/chime"
)

var positionChannels = []int{chime.SailX, chime.SailY, chime.SailZ, chime.ClapperX, chime.ClapperZ}

// LyapunovExponent estimates how fast two windchimes that differ by a tiny
// sail velocity drift apart. Both get the same random push at t=0; the
// second also gets perturbation along x. The result is the least-squares
// slope of ln(separation) over time, taken until the separation saturates.
// A positive value indicates chaotic motion.
func LyapunovExponent(opts chime.Options, seed int64, dt, duration, perturbation float64) (float64, error) {
	a, err := chime.Build(opts)
	if err != nil {
		return 0, err
	}
	b, err := chime.Build(opts)
	if err != nil {
		return 0, err
	}

	a.Impulse(rand.New(rand.NewSource(seed)))
	b.Impulse(rand.New(rand.NewSource(seed)))
	sail := b.Sail.Body
	sail.SetLinearVelocity(sail.LinearVelocity().Add(mgl64.Vec3{perturbation, 0, 0}))

	var ts, logs []float64
	t := 0.0
	for t < duration {
		a.Sync(dt)
		b.Sync(dt)
		t += dt

		sep := separation(a.Sample(), b.Sample())
		if sep > 0.1 {
			break
		}
		if sep > 0 {
			ts = append(ts, t)
			logs = append(logs, math.Log(sep))
		}
	}

	return slope(ts, logs), nil
}

func separation(x, y []float64) float64 {
	sum := 0.0
	for _, i := range positionChannels {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func slope(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
