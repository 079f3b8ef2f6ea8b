package physics

import "github.com/go-gl/mathgl/mgl64"

// DebugMode is a bit set selecting what DebugDrawWorld emits.
type DebugMode int

const (
	NoDebug              DebugMode = 0
	DrawWireframe        DebugMode = 1
	DrawAabb             DebugMode = 2
	DrawFeaturesText     DebugMode = 4
	DrawContactPoints    DebugMode = 8
	NoDeactivation       DebugMode = 16
	NoHelpText           DebugMode = 32
	DrawText             DebugMode = 64
	ProfileTimings       DebugMode = 128
	EnableSatComparison  DebugMode = 256
	DisableBulletLCP     DebugMode = 512
	EnableCCD            DebugMode = 1024
	DrawConstraints      DebugMode = 2048
	DrawConstraintLimits DebugMode = 4096
	FastWireframe        DebugMode = 8192
	DrawNormals          DebugMode = 16384
	DrawOnTop            DebugMode = 32768
)

var debugModeNames = []struct {
	mode DebugMode
	name string
}{
	{DrawWireframe, "wireframe"},
	{DrawAabb, "aabb"},
	{DrawFeaturesText, "features-text"},
	{DrawContactPoints, "contacts"},
	{NoDeactivation, "no-deactivation"},
	{NoHelpText, "no-help-text"},
	{DrawText, "text"},
	{ProfileTimings, "profile"},
	{EnableSatComparison, "sat"},
	{DisableBulletLCP, "no-lcp"},
	{EnableCCD, "ccd"},
	{DrawConstraints, "constraints"},
	{DrawConstraintLimits, "limits"},
	{FastWireframe, "fast-wireframe"},
	{DrawNormals, "normals"},
	{DrawOnTop, "on-top"},
}

// Names lists the flags set in m.
func (m DebugMode) Names() []string {
	var out []string
	for _, n := range debugModeNames {
		if m&n.mode != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// ParseDebugMode returns the flag for a name from Names.
func ParseDebugMode(name string) (DebugMode, bool) {
	for _, n := range debugModeNames {
		if n.name == name {
			return n.mode, true
		}
	}
	return NoDebug, false
}

// DebugDrawer receives debug geometry from the world. Colors are RGB in [0, 1].
type DebugDrawer interface {
	DrawLine(from, to, color mgl64.Vec3)
	DrawContactPoint(point, normal mgl64.Vec3, distance float64, lifeTime int, color mgl64.Vec3)
	ReportErrorWarning(msg string)
	Draw3DText(location mgl64.Vec3, text string)
	DebugMode() DebugMode
}

var (
	activeColor     = mgl64.Vec3{0, 1, 0}
	sleepingColor   = mgl64.Vec3{0, 0, 1}
	staticColor     = mgl64.Vec3{1, 1, 1}
	aabbColor       = mgl64.Vec3{1, 0, 0}
	constraintColor = mgl64.Vec3{1, 1, 0}
	limitColor      = mgl64.Vec3{1, 0.5, 0}
	contactColor    = mgl64.Vec3{1, 1, 0}
	normalColor     = mgl64.Vec3{1, 0, 1}
	softColor       = mgl64.Vec3{0, 0, 0}
)

func drawCross(d DebugDrawer, p mgl64.Vec3, size float64, color mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		var off mgl64.Vec3
		off[i] = size
		d.DrawLine(p.Sub(off), p.Add(off), color)
	}
}

func drawBox(d DebugDrawer, lo, hi mgl64.Vec3, color mgl64.Vec3) {
	center := lo.Add(hi).Mul(0.5)
	half := hi.Sub(lo).Mul(0.5)
	boxEdges(Transform{Origin: center, Rotation: mgl64.QuatIdent()}, half, func(a, b mgl64.Vec3) {
		d.DrawLine(a, b, color)
	})
}

func (b *RigidBody) debugDraw(d DebugDrawer, mode DebugMode) {
	if mode&(DrawWireframe|FastWireframe) != 0 {
		color := activeColor
		switch {
		case b.IsStatic():
			color = staticColor
		case !b.IsActive():
			color = sleepingColor
		}
		b.shape.edges(b.WorldTransform(), func(p, q mgl64.Vec3) {
			d.DrawLine(p, q, color)
		})
	}
	if mode&DrawAabb != 0 {
		lo, hi := b.AABB()
		drawBox(d, lo, hi, aabbColor)
	}
	if mode&DrawNormals != 0 {
		t := b.WorldTransform()
		for i := 0; i < 3; i++ {
			var axis mgl64.Vec3
			axis[i] = 0.5
			d.DrawLine(t.Origin, t.Apply(axis), normalColor)
		}
	}
}

func (c *contact) debugDraw(d DebugDrawer, mode DebugMode) {
	if mode&DrawContactPoints == 0 {
		return
	}
	pa, _ := c.points()
	d.DrawContactPoint(pa, c.normal, -c.depth(), 0, contactColor)
	if mode&DrawNormals != 0 {
		d.DrawLine(pa, pa.Add(c.normal.Mul(0.5)), normalColor)
	}
}

// DebugDrawWorld emits debug geometry for everything in the world to the
// attached drawer. It does nothing without a drawer or with NoDebug.
func (w *World) DebugDrawWorld() {
	d := w.debugDrawer
	if d == nil {
		return
	}
	mode := d.DebugMode()
	if mode == NoDebug {
		return
	}
	for _, b := range w.bodies {
		b.debugDraw(d, mode)
	}
	for _, c := range w.constraints {
		c.debugDraw(d, mode)
	}
	for _, s := range w.softBodies {
		s.debugDraw(d, mode)
	}
	for _, c := range w.contacts {
		c.debugDraw(d, mode)
	}
}
