package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Collision filter groups.
const (
	DefaultFilter = 1
	StaticFilter  = 2
	AllFilter     = -1
)

const (
	defaultFixedTimeStep    = 1.0 / 60.0
	defaultSolverIterations = 10
	defaultSubsteps         = 2
	restitutionThreshold    = 0.2

	// velocity kept per substep while relaxing
	relaxDamping = 0.9
	relaxMinTime = 0.5
	restSpeed    = 1e-3
)

// ContactEvent reports the first step two bodies touch.
type ContactEvent struct {
	A, B   *RigidBody
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	// Speed is the closing speed along the normal when the contact was found,
	// zero for pairs already separating.
	Speed float64
	Time  float64
}

type bodyPair struct{ a, b *RigidBody }

type filter struct{ group, mask int }

// World owns rigid bodies, constraints and soft bodies and advances them in
// fixed steps.
type World struct {
	gravity mgl64.Vec3
	info    *WorldInfo

	bodies      []*RigidBody
	filters     map[*RigidBody]filter
	constraints []Constraint
	softBodies  []*SoftBody
	contacts    []*contact
	touching    map[bodyPair]bool

	fixedTimeStep    float64
	solverIterations int
	substeps         int
	localTime        float64
	time             float64

	debugDrawer DebugDrawer
	listeners   []func(ContactEvent)
}

func NewWorld() *World {
	return &World{
		gravity:          mgl64.Vec3{0, -10, 0},
		info:             NewWorldInfo(),
		filters:          make(map[*RigidBody]filter),
		touching:         make(map[bodyPair]bool),
		fixedTimeStep:    defaultFixedTimeStep,
		solverIterations: defaultSolverIterations,
		substeps:         defaultSubsteps,
	}
}

func (w *World) Gravity() mgl64.Vec3    { return w.gravity }
func (w *World) WorldInfo() *WorldInfo  { return w.info }
func (w *World) Time() float64          { return w.time }
func (w *World) FixedTimeStep() float64 { return w.fixedTimeStep }

// SetGravity sets gravity for every dynamic body, present and future.
// Soft bodies use WorldInfo().Gravity instead.
func (w *World) SetGravity(g mgl64.Vec3) {
	w.gravity = g
	for _, b := range w.bodies {
		if !b.IsStatic() {
			b.SetGravity(g)
		}
	}
}

func (w *World) SetFixedTimeStep(h float64) {
	if h > 0 {
		w.fixedTimeStep = h
	}
}

func (w *World) SetSolverIterations(n int) {
	if n > 0 {
		w.solverIterations = n
	}
}

func (w *World) SetSubsteps(n int) {
	if n > 0 {
		w.substeps = n
	}
}

func (w *World) SetDebugDrawer(d DebugDrawer) { w.debugDrawer = d }
func (w *World) DebugDrawer() DebugDrawer     { return w.debugDrawer }

// OnContact registers fn for contact begin events.
func (w *World) OnContact(fn func(ContactEvent)) {
	w.listeners = append(w.listeners, fn)
}

// AddRigidBody adds b with the default filter for its kind.
func (w *World) AddRigidBody(b *RigidBody) {
	if b.IsStatic() {
		w.AddRigidBodyWithFilter(b, StaticFilter, AllFilter^StaticFilter)
		return
	}
	w.AddRigidBodyWithFilter(b, DefaultFilter, AllFilter)
}

func (w *World) AddRigidBodyWithFilter(b *RigidBody, group, mask int) {
	if !b.IsStatic() {
		b.SetGravity(w.gravity)
	}
	w.bodies = append(w.bodies, b)
	w.filters[b] = filter{group: group, mask: mask}
}

func (w *World) RemoveRigidBody(b *RigidBody) {
	for i, o := range w.bodies {
		if o == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	delete(w.filters, b)
	for p := range w.touching {
		if p.a == b || p.b == b {
			delete(w.touching, p)
		}
	}
}

// AddConstraint adds c. With disableCollisions the two linked bodies stop colliding.
func (w *World) AddConstraint(c Constraint, disableCollisions bool) {
	if disableCollisions {
		a, b := c.Bodies()
		a.SetIgnoreCollisionCheck(b, true)
	}
	w.constraints = append(w.constraints, c)
}

func (w *World) AddSoftBody(sb *SoftBody, group, mask int) {
	sb.group, sb.mask = group, mask
	w.softBodies = append(w.softBodies, sb)
}

func (w *World) RigidBodies() []*RigidBody { return w.bodies }
func (w *World) Constraints() []Constraint { return w.constraints }
func (w *World) SoftBodies() []*SoftBody   { return w.softBodies }

// NumContacts returns the number of contacts found in the last substep.
func (w *World) NumContacts() int { return len(w.contacts) }

// StepSimulation advances the world by timeStep using fixed internal steps.
// At most maxSubSteps internal steps run; leftover time carries to the next
// call and motion states are extrapolated by it. With maxSubSteps == 0 a
// single step of timeStep runs. The return value is the number of internal
// steps the elapsed time called for, before clamping.
func (w *World) StepSimulation(timeStep float64, maxSubSteps int) int {
	fixed := w.fixedTimeStep
	steps := 0
	if maxSubSteps > 0 {
		w.localTime += timeStep
		if w.localTime >= fixed {
			steps = int(w.localTime / fixed)
			w.localTime -= float64(steps) * fixed
		}
	} else {
		fixed = timeStep
		w.localTime = 0
		if timeStep > 1e-12 {
			steps = 1
			maxSubSteps = 1
		}
	}
	clamped := steps
	if clamped > maxSubSteps {
		clamped = maxSubSteps
	}
	for i := 0; i < clamped; i++ {
		w.internalStep(fixed)
	}
	w.synchronizeMotionStates()
	return steps
}

// Settle relaxes joints, anchors, rope links and contacts for the given
// number of passes without producing any velocity. It brings an assembled
// scene to a consistent pose before the first step.
func (w *World) Settle(iterations int) {
	statics := w.softStatics()
	for i := 0; i < iterations; i++ {
		for _, c := range w.constraints {
			c.prepare()
			c.solvePosition(w.fixedTimeStep)
		}
		for _, sb := range w.softBodies {
			sb.solveLinks()
			sb.solveAnchors()
		}
		for _, c := range w.detect() {
			solveContactNormal(c)
		}
		for _, sb := range w.softBodies {
			sb.collideStatic(statics[sb])
		}
	}
	w.rest()
	w.contacts = nil
}

// Relax lets the world sag under gravity with heavy damping until nothing
// moves faster than restSpeed, or maxTime of simulated steps have run.
// World time does not advance and no contact events are reported. Pairs
// left touching count as already touching for the first real step.
// It returns the simulated time spent.
func (w *World) Relax(maxTime float64) float64 {
	h := w.fixedTimeStep / float64(w.substeps)
	found := make(map[bodyPair]*contact)
	elapsed := 0.0
	for elapsed < maxTime {
		clear(found)
		for s := 0; s < w.substeps; s++ {
			w.substep(h, found)
			w.damp(relaxDamping)
		}
		elapsed += w.fixedTimeStep
		if elapsed >= relaxMinTime && w.maxSpeed() < restSpeed {
			break
		}
	}
	w.rest()
	w.touching = make(map[bodyPair]bool, len(found))
	for p := range found {
		w.touching[p] = true
	}
	return elapsed
}

func (w *World) damp(keep float64) {
	for _, b := range w.bodies {
		if b.movable() {
			b.linVel = b.linVel.Mul(keep)
			b.angVel = b.angVel.Mul(keep)
		}
	}
	for _, sb := range w.softBodies {
		for i := range sb.Nodes {
			sb.Nodes[i].V = sb.Nodes[i].V.Mul(keep)
		}
	}
}

// maxSpeed is the fastest linear speed of any dynamic body or rope node.
func (w *World) maxSpeed() float64 {
	top := 0.0
	for _, b := range w.bodies {
		if b.movable() {
			top = math.Max(top, b.linVel.Len())
		}
	}
	for _, sb := range w.softBodies {
		for _, n := range sb.Nodes {
			if n.InvMass > 0 {
				top = math.Max(top, n.V.Len())
			}
		}
	}
	return top
}

// rest zeroes every velocity and publishes the current poses.
func (w *World) rest() {
	for _, b := range w.bodies {
		b.prevPos, b.prevRot = b.pos, b.rot
		b.linVel, b.angVel = mgl64.Vec3{}, mgl64.Vec3{}
		if b.motionState != nil && !b.IsStatic() {
			b.motionState.SetWorldTransform(b.WorldTransform())
		}
	}
	for _, sb := range w.softBodies {
		for i := range sb.Nodes {
			sb.Nodes[i].prev = sb.Nodes[i].X
			sb.Nodes[i].V = mgl64.Vec3{}
		}
	}
}

func (w *World) synchronizeMotionStates() {
	for _, b := range w.bodies {
		if b.motionState == nil || b.IsStatic() || !b.IsActive() {
			continue
		}
		b.motionState.SetWorldTransform(b.PredictIntegratedTransform(w.localTime))
	}
}

func (w *World) internalStep(dt float64) {
	h := dt / float64(w.substeps)
	began := make(map[bodyPair]*contact)
	for s := 0; s < w.substeps; s++ {
		w.substep(h, began)
	}
	w.emitEvents(began)

	allowSleep := w.debugDrawer == nil || w.debugDrawer.DebugMode()&NoDeactivation == 0
	for _, b := range w.bodies {
		b.updateDeactivation(dt, allowSleep)
	}
	w.time += dt
}

func (w *World) substep(h float64, found map[bodyPair]*contact) {
	for _, b := range w.bodies {
		b.integrate(h)
	}
	var softs []*SoftBody
	for _, sb := range w.softBodies {
		if sb.simulated() {
			sb.integrate(h)
			softs = append(softs, sb)
		}
	}

	w.contacts = w.detect()
	for _, c := range w.contacts {
		p := bodyPair{c.a, c.b}
		if prev, ok := found[p]; !ok || c.approach > prev.approach {
			found[p] = c
		}
	}
	for _, c := range w.constraints {
		c.prepare()
	}

	statics := w.softStatics()
	for it := 0; it < w.solverIterations; it++ {
		for _, c := range w.constraints {
			c.solvePosition(h)
		}
		for _, sb := range softs {
			for p := 0; p < max(sb.Config.PIterations, 1); p++ {
				sb.solveLinks()
				sb.solveAnchors()
			}
		}
		for _, c := range w.contacts {
			w.solveContact(c)
		}
		for _, sb := range softs {
			sb.collideStatic(statics[sb])
		}
	}

	for _, b := range w.bodies {
		b.updateVelocity(h)
	}
	for _, sb := range softs {
		sb.updateVelocity(h)
	}
	for _, c := range w.contacts {
		w.solveContactVelocity(c)
	}
	for _, sb := range softs {
		sb.solveVelocities()
	}
}

func (w *World) canCollide(a, b *RigidBody) bool {
	if !a.movable() && !b.movable() {
		return false
	}
	if a.activation == DisableSimulation || b.activation == DisableSimulation {
		return false
	}
	fa, fb := w.filters[a], w.filters[b]
	if fa.group&fb.mask == 0 || fb.group&fa.mask == 0 {
		return false
	}
	return a.checkCollideWith(b)
}

func (w *World) detect() []*contact {
	var out []*contact
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		aLo, aHi := a.AABB()
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if !w.canCollide(a, b) {
				continue
			}
			bLo, bHi := b.AABB()
			if !aabbOverlap(aLo, aHi, bLo, bHi) {
				continue
			}
			c, ok := collide(a, b)
			if !ok {
				continue
			}
			if a.movable() && !b.IsStatic() {
				b.Activate()
			}
			if b.movable() && !a.IsStatic() {
				a.Activate()
			}
			out = append(out, c)
		}
	}
	return out
}

// softStatics lists the static bodies each soft body may touch.
func (w *World) softStatics() map[*SoftBody][]*RigidBody {
	out := make(map[*SoftBody][]*RigidBody, len(w.softBodies))
	for _, sb := range w.softBodies {
		for _, b := range w.bodies {
			if !b.IsStatic() {
				continue
			}
			f := w.filters[b]
			if f.group&sb.mask != 0 && sb.group&f.mask != 0 {
				out[sb] = append(out[sb], b)
			}
		}
	}
	return out
}

func (w *World) solveContact(c *contact) {
	if !solveContactNormal(c) {
		return
	}
	prevA := c.a.prevRot.Rotate(c.localA).Add(c.a.prevPos)
	prevB := c.b.prevRot.Rotate(c.localB).Add(c.b.prevPos)
	pa, pb := c.points()
	dp := pa.Sub(prevA).Sub(pb.Sub(prevB))
	tangent := dp.Sub(c.normal.Mul(dp.Dot(c.normal)))
	t, slip := safeNormalize(tangent)
	if slip == 0 {
		return
	}
	mu := c.a.friction * c.b.friction
	if slip > mu*math.Abs(c.normalLambda) {
		return
	}
	solvePair(c.a, c.b, pa.Sub(c.a.pos), pb.Sub(c.b.pos), t, slip)
}

func solveContactNormal(c *contact) bool {
	d := c.depth()
	if d <= 0 {
		return false
	}
	pa, pb := c.points()
	ra, rb := pa.Sub(c.a.pos), pb.Sub(c.b.pos)
	c.normalLambda += solvePair(c.a, c.b, ra, rb, c.normal, d)
	return true
}

func (w *World) solveContactVelocity(c *contact) {
	if c.depth() < 0 {
		return
	}
	e := c.a.restitution * c.b.restitution
	if e == 0 || c.approach < restitutionThreshold {
		return
	}
	pa, pb := c.points()
	ra, rb := pa.Sub(c.a.pos), pb.Sub(c.b.pos)
	vn := c.a.velocityAt(pa).Sub(c.b.velocityAt(pb)).Dot(c.normal)
	wsum := c.a.generalizedInvMass(ra, c.normal) + c.b.generalizedInvMass(rb, c.normal)
	if wsum == 0 {
		return
	}
	p := c.normal.Mul((-e*c.approach - vn) / wsum)
	c.a.applyVelocityImpulse(p, ra)
	c.b.applyVelocityImpulse(p.Mul(-1), rb)
}

func (w *World) emitEvents(found map[bodyPair]*contact) {
	next := make(map[bodyPair]bool, len(found))
	for p, c := range found {
		next[p] = true
		if w.touching[p] || len(w.listeners) == 0 {
			continue
		}
		pa, _ := c.points()
		ev := ContactEvent{A: c.a, B: c.b, Point: pa, Normal: c.normal, Speed: math.Max(c.approach, 0), Time: w.time}
		for _, fn := range w.listeners {
			fn(ev)
		}
	}
	w.touching = next
}
