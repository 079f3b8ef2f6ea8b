package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// A core is a convex set that a shape sweeps a sphere around. Collision
// between two shapes reduces to the distance between their cores.
type core interface {
	// closest returns the point of the core nearest to p, both in the core's frame.
	closest(p mgl64.Vec3) mgl64.Vec3
}

type placedCore struct {
	core   core
	local  Transform
	radius float64
}

type boxCore struct{ half mgl64.Vec3 }

func (b boxCore) closest(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		clamp(p[0], -b.half[0], b.half[0]),
		clamp(p[1], -b.half[1], b.half[1]),
		clamp(p[2], -b.half[2], b.half[2]),
	}
}

// segmentCore runs along Y from -half to half.
type segmentCore struct{ half float64 }

func (s segmentCore) closest(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{0, clamp(p[1], -s.half, s.half), 0}
}

// diskCore lies in the XZ plane.
type diskCore struct{ radius float64 }

func (d diskCore) closest(p mgl64.Vec3) mgl64.Vec3 {
	q := mgl64.Vec3{p[0], 0, p[2]}
	if l := q.Len(); l > d.radius {
		q = q.Mul(d.radius / l)
	}
	return q
}

type worldCore struct {
	placedCore
	world Transform
}

func (w worldCore) closest(p mgl64.Vec3) mgl64.Vec3 {
	return w.world.Apply(w.core.closest(w.world.InverseApply(p)))
}

const projectionIterations = 24

// closestPoints finds a pair of nearest points between two cores by
// alternating projection. Both sets are convex so the iteration converges.
func closestPoints(a, b worldCore) (pa, pb mgl64.Vec3) {
	pa = a.world.Origin
	for i := 0; i < projectionIterations; i++ {
		pb = b.closest(pa)
		next := a.closest(pb)
		if next.Sub(pa).LenSqr() < 1e-18 {
			pa = next
			break
		}
		pa = next
	}
	return pa, b.closest(pa)
}

// contact is a penetrating pair of points found at the start of a substep.
type contact struct {
	a, b         *RigidBody
	localA       mgl64.Vec3
	localB       mgl64.Vec3
	normal       mgl64.Vec3 // from a towards b
	radius       float64
	approach     float64
	normalLambda float64
}

func (c *contact) points() (mgl64.Vec3, mgl64.Vec3) {
	return c.a.worldPoint(c.localA), c.b.worldPoint(c.localB)
}

// Depth of penetration along the contact normal, positive when overlapping.
func (c *contact) depth() float64 {
	pa, pb := c.points()
	return c.radius - pb.Sub(pa).Dot(c.normal)
}

// collide tests every core pair of two bodies and returns the deepest contact.
func collide(a, b *RigidBody) (*contact, bool) {
	var best *contact
	bestDepth := 0.0
	for _, ca := range a.worldCores() {
		for _, cb := range b.worldCores() {
			pa, pb := closestPoints(ca, cb)
			radius := ca.radius + cb.radius
			n, dist := safeNormalize(pb.Sub(pa))
			if dist >= radius {
				continue
			}
			if dist == 0 {
				n, _ = safeNormalize(cb.world.Origin.Sub(ca.world.Origin))
				if n == (mgl64.Vec3{}) {
					n = mgl64.Vec3{0, 1, 0}
				}
			}
			depth := radius - dist
			if best != nil && depth <= bestDepth {
				continue
			}
			bestDepth = depth
			best = &contact{
				a:      a,
				b:      b,
				localA: a.localPoint(pa),
				localB: b.localPoint(pb),
				normal: n,
				radius: radius,
			}
		}
	}
	if best == nil {
		return nil, false
	}
	va := a.velocityAt(a.worldPoint(best.localA))
	vb := b.velocityAt(b.worldPoint(best.localB))
	best.approach = va.Sub(vb).Dot(best.normal)
	return best, true
}

func aabbOverlap(aLo, aHi, bLo, bHi mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if aHi[i] < bLo[i] || bHi[i] < aLo[i] {
			return false
		}
	}
	return true
}

// pushNode moves a soft-body node of the given radius out of a static body.
func pushNode(n *Node, body *RigidBody, radius, friction float64) bool {
	hit := false
	for _, c := range body.worldCores() {
		q := c.closest(n.X)
		d, dist := safeNormalize(n.X.Sub(q))
		limit := radius + c.radius
		if dist >= limit {
			continue
		}
		if dist == 0 {
			d = mgl64.Vec3{0, 1, 0}
		}
		n.X = n.X.Add(d.Mul(limit - dist))
		moved := n.X.Sub(n.prev)
		tangent := moved.Sub(d.Mul(moved.Dot(d)))
		n.X = n.X.Sub(tangent.Mul(math.Min(friction, 1)))
		hit = true
	}
	return hit
}
