package physics

import "github.com/go-gl/mathgl/mgl64"

// Constraint ties the relative motion of two rigid bodies.
type Constraint interface {
	Bodies() (*RigidBody, *RigidBody)
	prepare()
	solvePosition(h float64)
	debugDraw(d DebugDrawer, mode DebugMode)
}

// Point2PointConstraint pins PivotA on A to PivotB on B. Pivots are in each body's local frame.
type Point2PointConstraint struct {
	a, b           *RigidBody
	pivotA, pivotB mgl64.Vec3

	// Compliance is the inverse stiffness in m/N. Zero is rigid.
	Compliance float64
	lambda     float64
}

func NewPoint2PointConstraint(a, b *RigidBody, pivotA, pivotB mgl64.Vec3) *Point2PointConstraint {
	return &Point2PointConstraint{a: a, b: b, pivotA: pivotA, pivotB: pivotB}
}

func (c *Point2PointConstraint) Bodies() (*RigidBody, *RigidBody) { return c.a, c.b }
func (c *Point2PointConstraint) PivotInA() mgl64.Vec3             { return c.pivotA }
func (c *Point2PointConstraint) PivotInB() mgl64.Vec3             { return c.pivotB }
func (c *Point2PointConstraint) SetPivotA(p mgl64.Vec3)           { c.pivotA = p }
func (c *Point2PointConstraint) SetPivotB(p mgl64.Vec3)           { c.pivotB = p }

// Error returns the world-space distance between the two pivots.
func (c *Point2PointConstraint) Error() float64 {
	pa, pb := c.worldPivots()
	return pa.Sub(pb).Len()
}

func (c *Point2PointConstraint) worldPivots() (mgl64.Vec3, mgl64.Vec3) {
	return c.a.worldPoint(c.pivotA), c.b.worldPoint(c.pivotB)
}

func (c *Point2PointConstraint) prepare() { c.lambda = 0 }

func (c *Point2PointConstraint) solvePosition(h float64) {
	pa, pb := c.worldPivots()
	n, dist := safeNormalize(pa.Sub(pb))
	if dist == 0 {
		return
	}
	ra, rb := pa.Sub(c.a.pos), pb.Sub(c.b.pos)
	w := c.a.generalizedInvMass(ra, n) + c.b.generalizedInvMass(rb, n)
	alpha := c.Compliance / (h * h)
	if w+alpha == 0 {
		return
	}
	dl := (-dist - alpha*c.lambda) / (w + alpha)
	c.lambda += dl
	p := n.Mul(dl)
	c.a.applyPositionImpulse(p, ra)
	c.b.applyPositionImpulse(p.Mul(-1), rb)
}

func (c *Point2PointConstraint) debugDraw(d DebugDrawer, mode DebugMode) {
	if mode&DrawConstraints == 0 {
		return
	}
	pa, pb := c.worldPivots()
	drawCross(d, pa, 0.1, constraintColor)
	drawCross(d, pb, 0.1, constraintColor)
	d.DrawLine(c.a.pos, pa, constraintColor)
	d.DrawLine(c.b.pos, pb, constraintColor)
	if mode&DrawConstraintLimits != 0 {
		d.DrawLine(pa, pb, limitColor)
	}
}
