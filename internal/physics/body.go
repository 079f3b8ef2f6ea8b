package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ActivationState mirrors the classic collision-object activation tags.
type ActivationState int

const (
	ActiveTag           ActivationState = 1
	IslandSleeping      ActivationState = 2
	WantsDeactivation   ActivationState = 3
	DisableDeactivation ActivationState = 4
	DisableSimulation   ActivationState = 5
)

const (
	sleepLinearThreshold  = 0.8
	sleepAngularThreshold = 1.0
	deactivationTime      = 2.0
)

// RigidBodyConstructionInfo collects what a body needs at creation.
// StartWorldTransform is used when MotionState is nil.
type RigidBodyConstructionInfo struct {
	Mass                float64
	MotionState         MotionState
	Shape               Shape
	LocalInertia        mgl64.Vec3
	StartWorldTransform Transform
	Friction            float64
	Restitution         float64
}

func NewRigidBodyConstructionInfo(mass float64, ms MotionState, shape Shape, localInertia mgl64.Vec3) RigidBodyConstructionInfo {
	return RigidBodyConstructionInfo{
		Mass:                mass,
		MotionState:         ms,
		Shape:               shape,
		LocalInertia:        localInertia,
		StartWorldTransform: IdentityTransform(),
		Friction:            0.5,
	}
}

type RigidBody struct {
	shape       Shape
	motionState MotionState

	mass         float64
	invMass      float64
	localInertia mgl64.Vec3
	invInertia   mgl64.Vec3

	pos, prevPos mgl64.Vec3
	rot, prevRot mgl64.Quat
	linVel       mgl64.Vec3
	angVel       mgl64.Vec3
	gravity      mgl64.Vec3

	linDamping, angDamping float64
	friction, restitution  float64

	activation    ActivationState
	sleepTimer    float64
	noCollideWith map[*RigidBody]bool

	// UserIndex is free for callers to tag the body.
	UserIndex int
}

func NewRigidBody(info RigidBodyConstructionInfo) *RigidBody {
	start := info.StartWorldTransform
	if info.MotionState != nil {
		start = info.MotionState.WorldTransform()
	}
	if start.Rotation == (mgl64.Quat{}) {
		start.Rotation = mgl64.QuatIdent()
	}
	b := &RigidBody{
		shape:        info.Shape,
		motionState:  info.MotionState,
		pos:          start.Origin,
		prevPos:      start.Origin,
		rot:          start.Rotation.Normalize(),
		prevRot:      start.Rotation.Normalize(),
		friction:     info.Friction,
		restitution:  info.Restitution,
		activation:   ActiveTag,
		localInertia: info.LocalInertia,
	}
	b.SetMassProps(info.Mass, info.LocalInertia)
	return b
}

// SetMassProps sets mass and principal inertia. A zero mass makes the body static.
func (b *RigidBody) SetMassProps(mass float64, inertia mgl64.Vec3) {
	b.mass = mass
	b.localInertia = inertia
	if mass <= 0 {
		b.mass, b.invMass = 0, 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / mass
	for i := 0; i < 3; i++ {
		if inertia[i] > 0 {
			b.invInertia[i] = 1 / inertia[i]
		} else {
			b.invInertia[i] = 0
		}
	}
}

func (b *RigidBody) Mass() float64                 { return b.mass }
func (b *RigidBody) InvMass() float64              { return b.invMass }
func (b *RigidBody) IsStatic() bool                { return b.invMass == 0 }
func (b *RigidBody) Shape() Shape                  { return b.shape }
func (b *RigidBody) MotionState() MotionState      { return b.motionState }
func (b *RigidBody) SetMotionState(ms MotionState) { b.motionState = ms }
func (b *RigidBody) Position() mgl64.Vec3          { return b.pos }
func (b *RigidBody) Rotation() mgl64.Quat          { return b.rot }
func (b *RigidBody) LinearVelocity() mgl64.Vec3    { return b.linVel }
func (b *RigidBody) AngularVelocity() mgl64.Vec3   { return b.angVel }
func (b *RigidBody) Friction() float64             { return b.friction }
func (b *RigidBody) SetFriction(f float64)         { b.friction = f }
func (b *RigidBody) Restitution() float64          { return b.restitution }
func (b *RigidBody) SetRestitution(r float64)      { b.restitution = r }
func (b *RigidBody) Gravity() mgl64.Vec3           { return b.gravity }
func (b *RigidBody) SetGravity(g mgl64.Vec3)       { b.gravity = g }

func (b *RigidBody) WorldTransform() Transform {
	return Transform{Origin: b.pos, Rotation: b.rot}
}

// SetWorldTransform teleports the body. Velocities are kept.
func (b *RigidBody) SetWorldTransform(t Transform) {
	b.pos, b.prevPos = t.Origin, t.Origin
	b.rot = t.Rotation.Normalize()
	b.prevRot = b.rot
}

func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3)  { b.linVel = v }
func (b *RigidBody) SetAngularVelocity(w mgl64.Vec3) { b.angVel = w }

// SetDamping sets per-second linear and angular damping factors in [0, 1].
func (b *RigidBody) SetDamping(linear, angular float64) {
	b.linDamping = clamp(linear, 0, 1)
	b.angDamping = clamp(angular, 0, 1)
}

func (b *RigidBody) ActivationState() ActivationState { return b.activation }

// SetActivationState forces a state. DisableDeactivation and DisableSimulation stick
// until replaced by another SetActivationState call.
func (b *RigidBody) SetActivationState(s ActivationState) {
	b.activation = s
	if s != IslandSleeping {
		b.sleepTimer = 0
	}
}

// Activate wakes a sleeping body.
func (b *RigidBody) Activate() {
	if b.activation == IslandSleeping || b.activation == WantsDeactivation {
		b.activation = ActiveTag
	}
	b.sleepTimer = 0
}

func (b *RigidBody) IsActive() bool {
	return b.activation != IslandSleeping && b.activation != DisableSimulation
}

func (b *RigidBody) ApplyCentralImpulse(impulse mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
}

// ApplyImpulse applies an impulse at relPos, an offset from the center of mass in world axes.
func (b *RigidBody) ApplyImpulse(impulse, relPos mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.applyInvInertia(relPos.Cross(impulse)))
}

// SetIgnoreCollisionCheck excludes contacts between b and other.
func (b *RigidBody) SetIgnoreCollisionCheck(other *RigidBody, ignore bool) {
	if b.noCollideWith == nil {
		b.noCollideWith = make(map[*RigidBody]bool)
	}
	if ignore {
		b.noCollideWith[other] = true
	} else {
		delete(b.noCollideWith, other)
	}
}

func (b *RigidBody) checkCollideWith(other *RigidBody) bool {
	return !b.noCollideWith[other] && !other.noCollideWith[b]
}

// PredictIntegratedTransform extrapolates the current transform by h seconds.
func (b *RigidBody) PredictIntegratedTransform(h float64) Transform {
	if b.invMass == 0 || !b.IsActive() || h == 0 {
		return b.WorldTransform()
	}
	return Transform{
		Origin:   b.pos.Add(b.linVel.Mul(h)),
		Rotation: integrateRotation(b.rot, b.angVel, h),
	}
}

func (b *RigidBody) LocalInertia() mgl64.Vec3 { return b.localInertia }

// KineticEnergy sums translational and rotational energy. Static bodies have none.
func (b *RigidBody) KineticEnergy() float64 {
	if b.invMass == 0 {
		return 0
	}
	w := b.rot.Conjugate().Rotate(b.angVel)
	rot := b.localInertia[0]*w[0]*w[0] + b.localInertia[1]*w[1]*w[1] + b.localInertia[2]*w[2]*w[2]
	return 0.5*b.mass*b.linVel.LenSqr() + 0.5*rot
}

// AABB returns the world-space bounds of the body's shape.
func (b *RigidBody) AABB() (mgl64.Vec3, mgl64.Vec3) {
	return worldAABB(b.WorldTransform(), b.shape.LocalAABB())
}

func (b *RigidBody) worldPoint(local mgl64.Vec3) mgl64.Vec3 {
	return b.rot.Rotate(local).Add(b.pos)
}

func (b *RigidBody) localPoint(world mgl64.Vec3) mgl64.Vec3 {
	return b.rot.Conjugate().Rotate(world.Sub(b.pos))
}

func (b *RigidBody) velocityAt(world mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(world.Sub(b.pos)))
}

func (b *RigidBody) worldCores() []worldCore {
	t := b.WorldTransform()
	cores := b.shape.cores()
	out := make([]worldCore, len(cores))
	for i, c := range cores {
		out[i] = worldCore{placedCore: c, world: t.Mul(c.local)}
	}
	return out
}

// movable reports whether solver corrections should move the body.
func (b *RigidBody) movable() bool {
	return b.invMass > 0 && b.IsActive()
}

func (b *RigidBody) applyInvInertia(v mgl64.Vec3) mgl64.Vec3 {
	l := b.rot.Conjugate().Rotate(v)
	l = mgl64.Vec3{l[0] * b.invInertia[0], l[1] * b.invInertia[1], l[2] * b.invInertia[2]}
	return b.rot.Rotate(l)
}

// generalizedInvMass is the inverse mass felt by a correction along n at offset r.
func (b *RigidBody) generalizedInvMass(r, n mgl64.Vec3) float64 {
	if !b.movable() {
		return 0
	}
	rn := r.Cross(n)
	return b.invMass + rn.Dot(b.applyInvInertia(rn))
}

// applyPositionImpulse shifts and rotates the body by a positional impulse p at offset r.
func (b *RigidBody) applyPositionImpulse(p, r mgl64.Vec3) {
	if !b.movable() {
		return
	}
	b.pos = b.pos.Add(p.Mul(b.invMass))
	dw := b.applyInvInertia(r.Cross(p))
	b.rot = b.rot.Add(mgl64.Quat{W: 0, V: dw}.Mul(b.rot).Scale(0.5)).Normalize()
}

func (b *RigidBody) applyVelocityImpulse(p, r mgl64.Vec3) {
	if !b.movable() {
		return
	}
	b.linVel = b.linVel.Add(p.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.applyInvInertia(r.Cross(p)))
}

func (b *RigidBody) integrate(h float64) {
	b.prevPos, b.prevRot = b.pos, b.rot
	if !b.movable() {
		return
	}
	b.linVel = b.linVel.Add(b.gravity.Mul(h))
	if b.linDamping > 0 {
		b.linVel = b.linVel.Mul(math.Pow(1-b.linDamping, h))
	}
	if b.angDamping > 0 {
		b.angVel = b.angVel.Mul(math.Pow(1-b.angDamping, h))
	}
	b.pos = b.pos.Add(b.linVel.Mul(h))
	b.rot = integrateRotation(b.rot, b.angVel, h)
}

func (b *RigidBody) updateVelocity(h float64) {
	if !b.movable() {
		return
	}
	b.linVel = b.pos.Sub(b.prevPos).Mul(1 / h)
	b.angVel = angularVelocity(b.prevRot, b.rot, h)
}

func (b *RigidBody) updateDeactivation(h float64, allowSleep bool) {
	if b.invMass == 0 || b.activation == DisableDeactivation || b.activation == DisableSimulation {
		return
	}
	if b.activation == IslandSleeping {
		return
	}
	if b.linVel.Len() < sleepLinearThreshold && b.angVel.Len() < sleepAngularThreshold {
		b.sleepTimer += h
	} else {
		b.sleepTimer = 0
		b.activation = ActiveTag
		return
	}
	if b.sleepTimer > deactivationTime {
		b.activation = WantsDeactivation
		if allowSleep {
			b.activation = IslandSleeping
			b.linVel, b.angVel = mgl64.Vec3{}, mgl64.Vec3{}
		}
	}
}

// solvePair removes error c measured as (pa - pb)·n between two bodies, where
// ra and rb are the attachment offsets from each center of mass.
func solvePair(a, b *RigidBody, ra, rb, n mgl64.Vec3, c float64) float64 {
	w := a.generalizedInvMass(ra, n) + b.generalizedInvMass(rb, n)
	if w == 0 {
		return 0
	}
	lambda := -c / w
	p := n.Mul(lambda)
	a.applyPositionImpulse(p, ra)
	b.applyPositionImpulse(p.Mul(-1), rb)
	return lambda
}
