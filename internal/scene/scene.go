package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/physics"
)

type GeometryKind int

const (
	BoxGeometry GeometryKind = iota
	ConeGeometry
	CylinderGeometry
	PlaneGeometry
)

func (k GeometryKind) String() string {
	switch k {
	case BoxGeometry:
		return "box"
	case ConeGeometry:
		return "cone"
	case CylinderGeometry:
		return "cylinder"
	case PlaneGeometry:
		return "plane"
	}
	return "unknown"
}

// Geometry describes a renderable solid centered on its mesh origin.
// Size is (width, height, depth) for boxes, (radius, height, radius) for
// cones and cylinders and (width, height, 0) for planes.
type Geometry struct {
	Kind     GeometryKind
	Size     mgl64.Vec3
	Segments int
}

func Box(w, h, d float64) Geometry {
	return Geometry{Kind: BoxGeometry, Size: mgl64.Vec3{w, h, d}, Segments: 1}
}

func Cone(radius, height float64, segments int) Geometry {
	return Geometry{Kind: ConeGeometry, Size: mgl64.Vec3{radius, height, radius}, Segments: segments}
}

func Cylinder(radius, height float64, segments int) Geometry {
	return Geometry{Kind: CylinderGeometry, Size: mgl64.Vec3{radius, height, radius}, Segments: segments}
}

func Plane(w, h float64) Geometry {
	return Geometry{Kind: PlaneGeometry, Size: mgl64.Vec3{w, h, 0}, Segments: 1}
}

type Shading int

const (
	Lambert Shading = iota
	Phong
	LineBasic
)

type Material struct {
	Color      Color
	Shading    Shading
	DoubleSide bool
}

// Mesh pairs a render pose with the rigid body that drives it.
type Mesh struct {
	Name          string
	Geometry      Geometry
	Material      Material
	Position      mgl64.Vec3
	Quaternion    mgl64.Quat
	CastShadow    bool
	ReceiveShadow bool

	Body *physics.RigidBody
}

func NewMesh(name string, g Geometry, m Material) *Mesh {
	return &Mesh{Name: name, Geometry: g, Material: m, Quaternion: mgl64.QuatIdent()}
}

// SetPose copies a physics transform into the mesh.
func (m *Mesh) SetPose(t physics.Transform) {
	m.Position = t.Origin
	m.Quaternion = t.Rotation
}

// Group holds everything that gets drawn, in insertion order.
type Group struct {
	Position mgl64.Vec3
	Meshes   []*Mesh
	Ropes    []*Rope
}

func NewGroup() *Group {
	return &Group{}
}

func (g *Group) AddMesh(m *Mesh) { g.Meshes = append(g.Meshes, m) }
func (g *Group) AddRope(r *Rope) { g.Ropes = append(g.Ropes, r) }

// Find returns the first mesh with the given name.
func (g *Group) Find(name string) (*Mesh, bool) {
	for _, m := range g.Meshes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
