package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultMargin = 0.04

// Shape is a collision shape centered on its body's origin.
type Shape interface {
	// CalculateLocalInertia returns the principal moments of inertia for mass.
	CalculateLocalInertia(mass float64) mgl64.Vec3
	// LocalAABB returns the half extents of the shape's local bounding box, margin included.
	LocalAABB() mgl64.Vec3
	Margin() float64
	SetMargin(m float64)

	cores() []placedCore
	edges(t Transform, line func(a, b mgl64.Vec3))
}

type BoxShape struct {
	halfExtents mgl64.Vec3
	margin      float64
}

func NewBoxShape(halfExtents mgl64.Vec3) *BoxShape {
	return &BoxShape{halfExtents: halfExtents, margin: DefaultMargin}
}

func (b *BoxShape) HalfExtents() mgl64.Vec3 { return b.halfExtents }
func (b *BoxShape) Margin() float64         { return b.margin }
func (b *BoxShape) SetMargin(m float64)     { b.margin = m }
func (b *BoxShape) LocalAABB() mgl64.Vec3   { return b.halfExtents }

func (b *BoxShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	return boxInertia(mass, b.halfExtents)
}

func (b *BoxShape) cores() []placedCore {
	m := math.Min(b.margin, minComponent(b.halfExtents))
	inner := b.halfExtents.Sub(mgl64.Vec3{m, m, m})
	return []placedCore{{core: boxCore{half: inner}, local: IdentityTransform(), radius: m}}
}

func (b *BoxShape) edges(t Transform, line func(a, b mgl64.Vec3)) {
	boxEdges(t, b.halfExtents, line)
}

// ConeShape is a Y-up cone centered halfway between base and apex.
type ConeShape struct {
	radius, height float64
	margin         float64
}

func NewConeShape(radius, height float64) *ConeShape {
	return &ConeShape{radius: radius, height: height, margin: DefaultMargin}
}

func (c *ConeShape) Radius() float64     { return c.radius }
func (c *ConeShape) Height() float64     { return c.height }
func (c *ConeShape) Margin() float64     { return c.margin }
func (c *ConeShape) SetMargin(m float64) { c.margin = m }

func (c *ConeShape) LocalAABB() mgl64.Vec3 {
	return mgl64.Vec3{c.radius + c.margin, c.height/2 + c.margin, c.radius + c.margin}
}

func (c *ConeShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	r2, h2 := c.radius*c.radius, c.height*c.height
	side := mass * (3.0/20.0*r2 + 3.0/80.0*h2)
	return mgl64.Vec3{side, 0.3 * mass * r2, side}
}

// Cones only take part in constraints; they carry no collision core.
func (c *ConeShape) cores() []placedCore { return nil }

func (c *ConeShape) edges(t Transform, line func(a, b mgl64.Vec3)) {
	const slices = 16
	apex := t.Apply(mgl64.Vec3{0, c.height / 2, 0})
	ring := circle(c.radius, -c.height/2, slices)
	for i := range ring {
		a := t.Apply(ring[i])
		line(a, t.Apply(ring[(i+1)%slices]))
		if i%4 == 0 {
			line(a, apex)
		}
	}
}

// CylinderShape is a Y-up cylinder given by (radius, half height, radius).
type CylinderShape struct {
	halfExtents mgl64.Vec3
	margin      float64
}

func NewCylinderShape(halfExtents mgl64.Vec3) *CylinderShape {
	return &CylinderShape{halfExtents: halfExtents, margin: DefaultMargin}
}

func (c *CylinderShape) Radius() float64         { return c.halfExtents.X() }
func (c *CylinderShape) HalfHeight() float64     { return c.halfExtents.Y() }
func (c *CylinderShape) Margin() float64         { return c.margin }
func (c *CylinderShape) SetMargin(m float64)     { c.margin = m }
func (c *CylinderShape) LocalAABB() mgl64.Vec3   { return c.halfExtents }
func (c *CylinderShape) HalfExtents() mgl64.Vec3 { return c.halfExtents }

func (c *CylinderShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	r, h := c.Radius(), 2*c.HalfHeight()
	side := mass * (r*r/4 + h*h/12)
	return mgl64.Vec3{side, mass * r * r / 2, side}
}

// A tall cylinder collides as a capsule around its axis, a flat one as a
// rounded disk.
func (c *CylinderShape) cores() []placedCore {
	r, hh := c.Radius(), c.HalfHeight()
	if hh >= r {
		return []placedCore{{core: segmentCore{half: hh - r}, local: IdentityTransform(), radius: r}}
	}
	return []placedCore{{core: diskCore{radius: r - hh}, local: IdentityTransform(), radius: hh}}
}

func (c *CylinderShape) edges(t Transform, line func(a, b mgl64.Vec3)) {
	const slices = 16
	top := circle(c.Radius(), c.HalfHeight(), slices)
	bottom := circle(c.Radius(), -c.HalfHeight(), slices)
	for i := 0; i < slices; i++ {
		j := (i + 1) % slices
		line(t.Apply(top[i]), t.Apply(top[j]))
		line(t.Apply(bottom[i]), t.Apply(bottom[j]))
		if i%4 == 0 {
			line(t.Apply(top[i]), t.Apply(bottom[i]))
		}
	}
}

type CompoundChild struct {
	Transform Transform
	Shape     Shape
}

type CompoundShape struct {
	children []CompoundChild
	margin   float64
}

func NewCompoundShape() *CompoundShape {
	return &CompoundShape{margin: DefaultMargin}
}

func (c *CompoundShape) AddChildShape(local Transform, shape Shape) {
	c.children = append(c.children, CompoundChild{Transform: local, Shape: shape})
}

func (c *CompoundShape) Children() []CompoundChild { return c.children }
func (c *CompoundShape) Margin() float64           { return c.margin }
func (c *CompoundShape) SetMargin(m float64)       { c.margin = m }

func (c *CompoundShape) LocalAABB() mgl64.Vec3 {
	lo, hi := c.bounds()
	return mgl64.Vec3{
		math.Max(abs(lo[0]), abs(hi[0])),
		math.Max(abs(lo[1]), abs(hi[1])),
		math.Max(abs(lo[2]), abs(hi[2])),
	}
}

// Inertia of a compound is approximated by the box of its bounds.
func (c *CompoundShape) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	lo, hi := c.bounds()
	return boxInertia(mass, hi.Sub(lo).Mul(0.5))
}

func (c *CompoundShape) bounds() (mgl64.Vec3, mgl64.Vec3) {
	if len(c.children) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, ch := range c.children {
		cLo, cHi := worldAABB(ch.Transform, ch.Shape.LocalAABB())
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], cLo[i])
			hi[i] = math.Max(hi[i], cHi[i])
		}
	}
	return lo, hi
}

func (c *CompoundShape) cores() []placedCore {
	var out []placedCore
	for _, ch := range c.children {
		for _, pc := range ch.Shape.cores() {
			pc.local = ch.Transform.Mul(pc.local)
			out = append(out, pc)
		}
	}
	return out
}

func (c *CompoundShape) edges(t Transform, line func(a, b mgl64.Vec3)) {
	for _, ch := range c.children {
		ch.Shape.edges(t.Mul(ch.Transform), line)
	}
}

func boxInertia(mass float64, half mgl64.Vec3) mgl64.Vec3 {
	lx, ly, lz := 2*half.X(), 2*half.Y(), 2*half.Z()
	return mgl64.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	}
}

// worldAABB returns min and max corners of a local box of half extents
// placed by t.
func worldAABB(t Transform, half mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ext := absVec(t.Rotation.Rotate(mgl64.Vec3{half.X(), 0, 0})).
		Add(absVec(t.Rotation.Rotate(mgl64.Vec3{0, half.Y(), 0}))).
		Add(absVec(t.Rotation.Rotate(mgl64.Vec3{0, 0, half.Z()})))
	return t.Origin.Sub(ext), t.Origin.Add(ext)
}

func boxEdges(t Transform, h mgl64.Vec3, line func(a, b mgl64.Vec3)) {
	var corners [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{h.X(), h.Y(), h.Z()}
		if i&1 != 0 {
			c[0] = -c[0]
		}
		if i&2 != 0 {
			c[1] = -c[1]
		}
		if i&4 != 0 {
			c[2] = -c[2]
		}
		corners[i] = t.Apply(c)
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				line(corners[i], corners[i|bit])
			}
		}
	}
}

func circle(radius, y float64, slices int) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, slices)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(slices)
		pts[i] = mgl64.Vec3{math.Cos(a) * radius, y, math.Sin(a) * radius}
	}
	return pts
}

func minComponent(v mgl64.Vec3) float64 {
	return math.Min(v[0], math.Min(v[1], v[2]))
}
