package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/scene"
)

// flashTime is how long a struck tube stays highlighted, in sim seconds.
const flashTime = 0.2

// Orbit is a camera circling a target point.
type Orbit struct {
	Target   rl.Vector3
	Yaw      float64
	Pitch    float64
	Distance float64
}

// DefaultOrbit places the eye at (-7, 10, -20) looking at (0, 2, 0).
func DefaultOrbit() Orbit {
	return OrbitFrom(rl.NewVector3(-7, 10, -20), rl.NewVector3(0, 2, 0))
}

func OrbitFrom(eye, target rl.Vector3) Orbit {
	d := mgl64.Vec3{float64(eye.X - target.X), float64(eye.Y - target.Y), float64(eye.Z - target.Z)}
	dist := d.Len()
	return Orbit{
		Target:   target,
		Yaw:      math.Atan2(d.X(), d.Z()),
		Pitch:    math.Asin(d.Y() / dist),
		Distance: dist,
	}
}

func (o Orbit) Position() rl.Vector3 {
	cp := math.Cos(o.Pitch)
	return rl.NewVector3(
		o.Target.X+float32(o.Distance*cp*math.Sin(o.Yaw)),
		o.Target.Y+float32(o.Distance*math.Sin(o.Pitch)),
		o.Target.Z+float32(o.Distance*cp*math.Cos(o.Yaw)),
	)
}

func (o *Orbit) Rotate(dYaw, dPitch float64) {
	o.Yaw -= dYaw
	o.Pitch = mgl64.Clamp(o.Pitch+dPitch, -1.5, 1.5)
}

func (o *Orbit) Zoom(wheel float64) {
	o.Distance = mgl64.Clamp(o.Distance*(1-0.1*wheel), 3, 80)
}

func colorOf(c scene.Color) rl.Color {
	r, g, b := c.RGB()
	return rl.NewColor(r, g, b, 255)
}

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

// axisAngle converts q to the axis and angle in degrees DrawModelEx takes.
func axisAngle(q mgl64.Quat) (rl.Vector3, float32) {
	q = q.Normalize()
	s := q.V.Len()
	if s < 1e-9 {
		return rl.NewVector3(0, 1, 0), 0
	}
	angle := 2 * math.Atan2(s, q.W)
	axis := q.V.Mul(1 / s)
	return vec3(axis), float32(mgl64.RadToDeg(angle))
}

// meshFrame returns the model-space correction for g: raylib builds cones and
// cylinders from their base and planes flat on XZ, scene geometry is
// centered and planes face +Z.
func meshFrame(g scene.Geometry) (offset mgl64.Vec3, rot mgl64.Quat) {
	switch g.Kind {
	case scene.ConeGeometry, scene.CylinderGeometry:
		return mgl64.Vec3{0, -g.Size.Y() / 2, 0}, mgl64.QuatIdent()
	case scene.PlaneGeometry:
		return mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})
	}
	return mgl64.Vec3{}, mgl64.QuatIdent()
}

func genMesh(g scene.Geometry) rl.Mesh {
	s := g.Size
	switch g.Kind {
	case scene.ConeGeometry:
		return rl.GenMeshCone(float32(s.X()), float32(s.Y()), g.Segments)
	case scene.CylinderGeometry:
		return rl.GenMeshCylinder(float32(s.X()), float32(s.Y()), g.Segments)
	case scene.PlaneGeometry:
		return rl.GenMeshPlane(float32(s.X()), float32(s.Y()), 1, 1)
	}
	return rl.GenMeshCube(float32(s.X()), float32(s.Y()), float32(s.Z()))
}

func loadModels(g *scene.Group) map[*scene.Mesh]rl.Model {
	models := make(map[*scene.Mesh]rl.Model, len(g.Meshes))
	for _, m := range g.Meshes {
		models[m] = rl.LoadModelFromMesh(genMesh(m.Geometry))
	}
	return models
}

func (a *App) drawScene() {
	w := a.Chime
	hot := make(map[*scene.Mesh]bool)
	for tube, t := range a.flash {
		if w.Time()-t < flashTime {
			hot[w.Tubes[tube]] = true
		}
	}

	for _, m := range w.Group.Meshes {
		col := colorOf(m.Material.Color)
		if hot[m] {
			col = ColAccent
		}
		a.drawMesh(m, col)
	}

	for _, r := range w.Group.Ropes {
		col := colorOf(r.Material.Color)
		for _, i := range pairs(r.Indices) {
			x0, y0, z0 := r.Vertex(int(i[0]))
			x1, y1, z1 := r.Vertex(int(i[1]))
			rl.DrawLine3D(rl.NewVector3(x0, y0, z0), rl.NewVector3(x1, y1, z1), col)
		}
		r.NeedsUpdate = false
	}

	a.drawDebug()
}

func (a *App) drawMesh(m *scene.Mesh, col rl.Color) {
	model, ok := a.models[m]
	if !ok {
		return
	}
	offset, fix := meshFrame(m.Geometry)
	q := m.Quaternion.Mul(fix)
	pos := m.Position.Add(m.Quaternion.Rotate(offset))
	axis, angle := axisAngle(q)

	rl.DrawModelEx(model, vec3(pos), axis, angle, rl.NewVector3(1, 1, 1), col)
	if m.Material.Shading != scene.Phong {
		rl.DrawModelWiresEx(model, vec3(pos), axis, angle, rl.NewVector3(1, 1, 1), rl.Fade(rl.Black, 0.15))
	}
}

// drawDebug draws the overlay lines inside the current draw range.
func (a *App) drawDebug() {
	lines := a.Chime.DebugLines
	if lines == nil {
		return
	}
	for i := 0; i < lines.NumSegments(); i++ {
		from, to, c := lines.Segment(i)
		col := rl.NewColor(uint8(c[0]*255), uint8(c[1]*255), uint8(c[2]*255), 255)
		rl.DrawLine3D(rl.NewVector3(from[0], from[1], from[2]), rl.NewVector3(to[0], to[1], to[2]), col)
	}
	lines.PositionNeedsUpdate = false
	lines.ColorNeedsUpdate = false
}

func pairs(idx []uint16) [][2]uint16 {
	out := make([][2]uint16, 0, len(idx)/2)
	for i := 0; i+1 < len(idx); i += 2 {
		out = append(out, [2]uint16{idx[i], idx[i+1]})
	}
	return out
}
