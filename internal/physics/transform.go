package physics

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid placement: rotation followed by translation.
type Transform struct {
	Origin   mgl64.Vec3
	Rotation mgl64.Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

func NewTransform(origin mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Origin: origin, Rotation: rotation.Normalize()}
}

// Apply maps a point from the local frame into the parent frame.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Origin)
}

// InverseApply maps a parent-frame point into the local frame.
func (t Transform) InverseApply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Origin))
}

// Mul composes t with a child transform expressed in t's frame.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Origin:   t.Apply(child.Origin),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// MotionState synchronizes a body's simulated transform with the outside world.
// The world writes interpolated transforms into it after every StepSimulation.
type MotionState interface {
	WorldTransform() Transform
	SetWorldTransform(t Transform)
}

// DefaultMotionState keeps the last transform written by the world.
type DefaultMotionState struct {
	graphics Transform
	start    Transform
}

func NewDefaultMotionState(start Transform) *DefaultMotionState {
	return &DefaultMotionState{graphics: start, start: start}
}

func (m *DefaultMotionState) WorldTransform() Transform      { return m.graphics }
func (m *DefaultMotionState) SetWorldTransform(t Transform)  { m.graphics = t }
func (m *DefaultMotionState) StartWorldTransform() Transform { return m.start }

// integrateRotation advances q by angular velocity w over h.
func integrateRotation(q mgl64.Quat, w mgl64.Vec3, h float64) mgl64.Quat {
	spin := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * h)
	return q.Add(spin).Normalize()
}

// angularVelocity recovers the angular velocity that rotates prev into cur over h.
func angularVelocity(prev, cur mgl64.Quat, h float64) mgl64.Vec3 {
	dq := cur.Mul(prev.Conjugate())
	w := dq.V.Mul(2 / h)
	if dq.W < 0 {
		w = w.Mul(-1)
	}
	return w
}

func safeNormalize(v mgl64.Vec3) (mgl64.Vec3, float64) {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}, 0
	}
	return v.Mul(1 / l), l
}

func absVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{abs(v[0]), abs(v[1]), abs(v[2])}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
