package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixed = 1.0 / 60.0

func newBox(mass float64, half, pos mgl64.Vec3) *RigidBody {
	shape := NewBoxShape(half)
	ms := NewDefaultMotionState(NewTransform(pos, mgl64.QuatIdent()))
	info := NewRigidBodyConstructionInfo(mass, ms, shape, shape.CalculateLocalInertia(mass))
	return NewRigidBody(info)
}

func groundWorld() (*World, *RigidBody) {
	w := NewWorld()
	w.SetGravity(mgl64.Vec3{0, -10, 0})
	ground := newBox(0, mgl64.Vec3{20, 0.05, 20}, mgl64.Vec3{0, -0.05, 0})
	w.AddRigidBody(ground)
	return w, ground
}

type lineRecorder struct {
	mode     DebugMode
	lines    int
	contacts int
}

func (r *lineRecorder) DrawLine(from, to, color mgl64.Vec3) { r.lines++ }
func (r *lineRecorder) DrawContactPoint(point, normal mgl64.Vec3, distance float64, lifeTime int, color mgl64.Vec3) {
	r.contacts++
}
func (r *lineRecorder) ReportErrorWarning(msg string)               {}
func (r *lineRecorder) Draw3DText(location mgl64.Vec3, text string) {}
func (r *lineRecorder) DebugMode() DebugMode                        { return r.mode }

func TestStepSimulationCounts(t *testing.T) {
	tests := []struct {
		name        string
		timeStep    float64
		maxSubSteps int
		wantSteps   int
		wantTime    float64
	}{
		{"two steps", 2 * fixed, 10, 2, 2 * fixed},
		{"below one step", fixed / 2, 10, 0, 0},
		{"clamped", 0.5, 10, 30, 10 * fixed},
		{"variable step", 0.05, 0, 1, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			got := w.StepSimulation(tt.timeStep, tt.maxSubSteps)
			assert.Equal(t, tt.wantSteps, got)
			assert.InDelta(t, tt.wantTime, w.Time(), 1e-9)
		})
	}
}

func TestStepSimulationCarriesRemainder(t *testing.T) {
	w := NewWorld()
	assert.Equal(t, 0, w.StepSimulation(fixed*0.75, 10))
	assert.Equal(t, 1, w.StepSimulation(fixed*0.75, 10))
	assert.InDelta(t, fixed, w.Time(), 1e-12)
}

func TestFreeFall(t *testing.T) {
	w := NewWorld()
	w.SetGravity(mgl64.Vec3{0, -10, 0})
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 100, 0})
	w.AddRigidBody(box)

	for i := 0; i < 60; i++ {
		w.StepSimulation(fixed, 10)
	}

	assert.InDelta(t, -10, box.LinearVelocity().Y(), 1e-6)
	assert.Less(t, box.Position().Y(), 95.5)
	assert.Greater(t, box.Position().Y(), 94.5)
}

func TestMotionStateInterpolation(t *testing.T) {
	w := NewWorld()
	w.SetGravity(mgl64.Vec3{0, -10, 0})
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 100, 0})
	w.AddRigidBody(box)

	require.Equal(t, 1, w.StepSimulation(fixed*1.5, 10))

	ms := box.MotionState().WorldTransform()
	want := box.Position().Y() + box.LinearVelocity().Y()*fixed*0.5
	assert.InDelta(t, want, ms.Origin.Y(), 1e-9)
	assert.Less(t, ms.Origin.Y(), box.Position().Y())
}

func TestStaticBodiesDoNotMove(t *testing.T) {
	w, ground := groundWorld()
	ground.ApplyCentralImpulse(mgl64.Vec3{0, 100, 0})
	for i := 0; i < 30; i++ {
		w.StepSimulation(fixed, 10)
	}
	assert.Equal(t, mgl64.Vec3{0, -0.05, 0}, ground.Position())
	assert.Equal(t, mgl64.Vec3{}, ground.LinearVelocity())
}

func TestBoxRestsOnGround(t *testing.T) {
	w, _ := groundWorld()
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 2, 0})
	w.AddRigidBody(box)

	for i := 0; i < 180; i++ {
		w.StepSimulation(fixed, 10)
	}

	assert.InDelta(t, 0.5, box.Position().Y(), 0.02)
	assert.InDelta(t, 0, box.LinearVelocity().Len(), 0.1)
}

func TestContactBeginEvent(t *testing.T) {
	w, ground := groundWorld()
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 1, 0})
	box.SetActivationState(DisableDeactivation)
	w.AddRigidBody(box)

	var events []ContactEvent
	w.OnContact(func(ev ContactEvent) { events = append(events, ev) })

	for i := 0; i < 90; i++ {
		w.StepSimulation(fixed, 10)
	}

	require.Len(t, events, 1)
	assert.Same(t, ground, events[0].A)
	assert.Same(t, box, events[0].B)
	assert.Greater(t, events[0].Speed, 1.0)
	assert.InDelta(t, 1, events[0].Normal.Y(), 1e-6)
}

func TestDeactivation(t *testing.T) {
	tests := []struct {
		name  string
		state ActivationState
		want  ActivationState
	}{
		{"sleeps at rest", ActiveTag, IslandSleeping},
		{"deactivation disabled", DisableDeactivation, DisableDeactivation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := groundWorld()
			box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 0.6, 0})
			box.SetActivationState(tt.state)
			w.AddRigidBody(box)
			for i := 0; i < 240; i++ {
				w.StepSimulation(fixed, 10)
			}
			assert.Equal(t, tt.want, box.ActivationState())
		})
	}
}

func TestNoDeactivationDebugFlag(t *testing.T) {
	w, _ := groundWorld()
	w.SetDebugDrawer(&lineRecorder{mode: NoDeactivation})
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 0.6, 0})
	w.AddRigidBody(box)
	for i := 0; i < 240; i++ {
		w.StepSimulation(fixed, 10)
	}
	assert.Equal(t, WantsDeactivation, box.ActivationState())
	assert.True(t, box.IsActive())
}

func TestPoint2PointKeepsPivotsTogether(t *testing.T) {
	w := NewWorld()
	w.SetGravity(mgl64.Vec3{0, -10, 0})
	anchor := newBox(0, mgl64.Vec3{0.05, 0.05, 0.05}, mgl64.Vec3{})
	bob := newBox(1, mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{1, 0, 0})
	bob.SetActivationState(DisableDeactivation)
	w.AddRigidBody(anchor)
	w.AddRigidBody(bob)

	p2p := NewPoint2PointConstraint(bob, anchor, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{})
	w.AddConstraint(p2p, true)

	minY := 0.0
	for i := 0; i < 120; i++ {
		w.StepSimulation(fixed, 10)
		minY = min(minY, bob.Position().Y())
		assert.Less(t, p2p.Error(), 1e-2)
	}
	assert.Less(t, minY, -0.9)
	assert.False(t, bob.checkCollideWith(anchor))
}

func TestSettleClosesJointsWithoutVelocity(t *testing.T) {
	w := NewWorld()
	hook := newBox(0, mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{0, 5, 0})
	weight := newBox(2, mgl64.Vec3{0.2, 0.2, 0.2}, mgl64.Vec3{0, 1, 0})
	w.AddRigidBody(hook)
	w.AddRigidBody(weight)
	p2p := NewPoint2PointConstraint(weight, hook, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{})
	w.AddConstraint(p2p, true)

	require.Greater(t, p2p.Error(), 2.0)
	w.Settle(50)

	assert.Less(t, p2p.Error(), 1e-6)
	assert.Equal(t, mgl64.Vec3{}, weight.LinearVelocity())
	assert.InDelta(t, 4, weight.MotionState().WorldTransform().Origin.Y(), 1e-6)
}

func TestRelaxHangsPendulumAtRest(t *testing.T) {
	w := NewWorld()
	w.SetGravity(mgl64.Vec3{0, -10, 0})
	pivot := newBox(0, mgl64.Vec3{0.05, 0.05, 0.05}, mgl64.Vec3{})
	bob := newBox(1, mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{1, 0, 0})
	bob.SetActivationState(DisableDeactivation)
	w.AddRigidBody(pivot)
	w.AddRigidBody(bob)
	w.AddConstraint(NewPoint2PointConstraint(bob, pivot, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}), true)

	spent := w.Relax(20)

	assert.Less(t, spent, 20.0)
	assert.Zero(t, w.Time())
	assert.Equal(t, mgl64.Vec3{}, bob.LinearVelocity())
	assert.InDelta(t, -1, bob.Position().Y(), 0.02)
	assert.InDelta(t, 0, bob.Position().X(), 0.02)
	assert.InDelta(t, -1, bob.MotionState().WorldTransform().Origin.Y(), 0.02)

	start := bob.Position()
	for i := 0; i < 120; i++ {
		w.StepSimulation(fixed, 10)
	}
	assert.Less(t, bob.Position().Sub(start).Len(), 0.01)
}

func TestRelaxKeepsRestingContactsQuiet(t *testing.T) {
	w, _ := groundWorld()
	box := newBox(1, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 0.6, 0})
	box.SetActivationState(DisableDeactivation)
	w.AddRigidBody(box)

	var events []ContactEvent
	w.OnContact(func(ev ContactEvent) { events = append(events, ev) })

	w.Relax(5)
	for i := 0; i < 60; i++ {
		w.StepSimulation(fixed, 10)
	}

	assert.Empty(t, events)
	assert.InDelta(t, 0.5, box.Position().Y(), 0.02)
}

func TestApplyImpulse(t *testing.T) {
	box := newBox(2, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{})
	box.ApplyCentralImpulse(mgl64.Vec3{4, 0, -2})
	assert.InDelta(t, 2, box.LinearVelocity().X(), 1e-12)
	assert.InDelta(t, -1, box.LinearVelocity().Z(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, box.AngularVelocity())

	box.ApplyImpulse(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0.5, 0, 0})
	assert.Less(t, box.AngularVelocity().Y(), 0.0)
}

func TestDebugDrawWorld(t *testing.T) {
	tests := []struct {
		name      string
		mode      DebugMode
		wantLines bool
	}{
		{"no debug", NoDebug, false},
		{"wireframe", DrawWireframe, true},
		{"aabb", DrawAabb, true},
		{"constraints", DrawConstraints, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			a := newBox(0, mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{0, 2, 0})
			b := newBox(1, mgl64.Vec3{0.1, 0.1, 0.1}, mgl64.Vec3{0, 1, 0})
			w.AddRigidBody(a)
			w.AddRigidBody(b)
			w.AddConstraint(NewPoint2PointConstraint(b, a, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}), true)

			rec := &lineRecorder{mode: tt.mode}
			w.SetDebugDrawer(rec)
			w.DebugDrawWorld()
			assert.Equal(t, tt.wantLines, rec.lines > 0)
		})
	}
}

func TestDebugModeNames(t *testing.T) {
	m := DrawWireframe | DrawConstraints
	assert.Equal(t, []string{"wireframe", "constraints"}, m.Names())

	got, ok := ParseDebugMode("aabb")
	assert.True(t, ok)
	assert.Equal(t, DrawAabb, got)

	_, ok = ParseDebugMode("bogus")
	assert.False(t, ok)
}
