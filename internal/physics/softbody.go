package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldInfo holds the environment shared by soft bodies.
type WorldInfo struct {
	Gravity mgl64.Vec3
}

func NewWorldInfo() *WorldInfo {
	return &WorldInfo{Gravity: mgl64.Vec3{0, -10, 0}}
}

type Node struct {
	X       mgl64.Vec3
	V       mgl64.Vec3
	InvMass float64
	prev    mgl64.Vec3
}

type Link struct {
	N0, N1     int
	RestLength float64
}

// Anchor glues a node to a point fixed in a rigid body's local frame.
type Anchor struct {
	Node             int
	Body             *RigidBody
	LocalPivot       mgl64.Vec3
	Influence        float64
	DisableCollision bool
}

// SoftBodyConfig tunes the rope solver.
type SoftBodyConfig struct {
	// VIterations smooths relative velocity along links after each step.
	VIterations int
	// PIterations repeats the link and anchor projection inside one solver pass.
	PIterations int
	// DP is the per-second velocity damping in [0, 1].
	DP float64
	// KDF is the friction against rigid surfaces in [0, 1].
	KDF float64
	// KLST is the link stiffness in [0, 1].
	KLST float64
}

type SoftBody struct {
	info    *WorldInfo
	Nodes   []Node
	Links   []Link
	Anchors []Anchor
	Config  SoftBodyConfig

	margin     float64
	activation ActivationState
	group      int
	mask       int
}

// CreateRope builds a straight rope from from to to with res interior nodes.
// Bit 1 of fixeds pins the first node, bit 2 the last.
func CreateRope(info *WorldInfo, from, to mgl64.Vec3, res int, fixeds int) *SoftBody {
	if res < 0 {
		res = 0
	}
	count := res + 2
	sb := &SoftBody{
		info:       info,
		Nodes:      make([]Node, count),
		Links:      make([]Link, 0, count-1),
		Config:     SoftBodyConfig{VIterations: 0, PIterations: 1, KDF: 0.2, KLST: 1},
		margin:     0.25,
		activation: ActiveTag,
		group:      1,
		mask:       -1,
	}
	step := to.Sub(from).Mul(1 / float64(count-1))
	for i := range sb.Nodes {
		x := from.Add(step.Mul(float64(i)))
		sb.Nodes[i] = Node{X: x, prev: x, InvMass: 1}
	}
	if fixeds&1 != 0 {
		sb.Nodes[0].InvMass = 0
	}
	if fixeds&2 != 0 {
		sb.Nodes[count-1].InvMass = 0
	}
	for i := 1; i < count; i++ {
		sb.Links = append(sb.Links, Link{N0: i - 1, N1: i, RestLength: step.Len()})
	}
	return sb
}

// TotalMass sums the mass of every free node.
func (s *SoftBody) TotalMass() float64 {
	total := 0.0
	for _, n := range s.Nodes {
		if n.InvMass > 0 {
			total += 1 / n.InvMass
		}
	}
	return total
}

// SetTotalMass rescales free node masses so they add up to mass. Pinned nodes stay pinned.
// Ropes have no faces, so fromFaces is accepted for API parity and ignored.
func (s *SoftBody) SetTotalMass(mass float64, fromFaces bool) {
	_ = fromFaces
	total := s.TotalMass()
	if total == 0 || mass <= 0 {
		return
	}
	scale := mass / total
	for i := range s.Nodes {
		if s.Nodes[i].InvMass > 0 {
			s.Nodes[i].InvMass /= scale
		}
	}
}

func (s *SoftBody) KineticEnergy() float64 {
	e := 0.0
	for _, n := range s.Nodes {
		if n.InvMass > 0 {
			e += 0.5 * n.V.LenSqr() / n.InvMass
		}
	}
	return e
}

// SetMass sets a single node's mass. Zero pins the node.
func (s *SoftBody) SetMass(node int, mass float64) {
	if mass <= 0 {
		s.Nodes[node].InvMass = 0
		return
	}
	s.Nodes[node].InvMass = 1 / mass
}

// AppendAnchor attaches node to body at the node's current position.
func (s *SoftBody) AppendAnchor(node int, body *RigidBody, disableCollision bool, influence float64) {
	s.AppendAnchorAt(node, body, body.localPoint(s.Nodes[node].X), disableCollision, influence)
}

// AppendAnchorAt attaches node to body at a pivot in the body's local frame.
func (s *SoftBody) AppendAnchorAt(node int, body *RigidBody, localPivot mgl64.Vec3, disableCollision bool, influence float64) {
	s.Anchors = append(s.Anchors, Anchor{
		Node:             node,
		Body:             body,
		LocalPivot:       localPivot,
		Influence:        clamp(influence, 0, 1),
		DisableCollision: disableCollision,
	})
}

func (s *SoftBody) Margin() float64     { return s.margin }
func (s *SoftBody) SetMargin(m float64) { s.margin = m }

func (s *SoftBody) ActivationState() ActivationState { return s.activation }

func (s *SoftBody) SetActivationState(state ActivationState) { s.activation = state }

func (s *SoftBody) simulated() bool {
	return s.activation != DisableSimulation
}

// AABB bounds every node inflated by the margin.
func (s *SoftBody) AABB() (mgl64.Vec3, mgl64.Vec3) {
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, n := range s.Nodes {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], n.X[i]-s.margin)
			hi[i] = math.Max(hi[i], n.X[i]+s.margin)
		}
	}
	return lo, hi
}

func (s *SoftBody) integrate(h float64) {
	for i := range s.Nodes {
		n := &s.Nodes[i]
		n.prev = n.X
		if n.InvMass == 0 {
			n.V = mgl64.Vec3{}
			continue
		}
		n.V = n.V.Add(s.info.Gravity.Mul(h))
		if s.Config.DP > 0 {
			n.V = n.V.Mul(math.Pow(1-clamp(s.Config.DP, 0, 1), h))
		}
		n.X = n.X.Add(n.V.Mul(h))
	}
}

func (s *SoftBody) solveLinks() {
	k := s.Config.KLST
	if k <= 0 {
		k = 1
	}
	for _, l := range s.Links {
		a, b := &s.Nodes[l.N0], &s.Nodes[l.N1]
		w := a.InvMass + b.InvMass
		if w == 0 {
			continue
		}
		n, dist := safeNormalize(a.X.Sub(b.X))
		if dist == 0 {
			continue
		}
		dl := -k * (dist - l.RestLength) / w
		a.X = a.X.Add(n.Mul(dl * a.InvMass))
		b.X = b.X.Sub(n.Mul(dl * b.InvMass))
	}
}

func (s *SoftBody) solveAnchors() {
	for _, an := range s.Anchors {
		node := &s.Nodes[an.Node]
		target := an.Body.worldPoint(an.LocalPivot)
		n, dist := safeNormalize(node.X.Sub(target))
		if dist == 0 {
			continue
		}
		r := target.Sub(an.Body.pos)
		w := node.InvMass + an.Body.generalizedInvMass(r, n)
		if w == 0 {
			continue
		}
		dl := -dist * an.Influence / w
		node.X = node.X.Add(n.Mul(dl * node.InvMass))
		an.Body.applyPositionImpulse(n.Mul(-dl), r)
	}
}

// collideStatic keeps free nodes outside static rigid bodies. Anchored
// nodes follow their body instead.
func (s *SoftBody) collideStatic(statics []*RigidBody) {
	if len(statics) == 0 {
		return
	}
	anchored := make(map[int]bool, len(s.Anchors))
	for _, an := range s.Anchors {
		anchored[an.Node] = true
	}
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.InvMass == 0 || anchored[i] {
			continue
		}
		for _, body := range statics {
			lo, hi := body.AABB()
			m := mgl64.Vec3{s.margin, s.margin, s.margin}
			if !aabbOverlap(n.X.Sub(m), n.X.Add(m), lo, hi) {
				continue
			}
			pushNode(n, body, s.margin, s.Config.KDF)
		}
	}
}

func (s *SoftBody) updateVelocity(h float64) {
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.InvMass == 0 {
			continue
		}
		n.V = n.X.Sub(n.prev).Mul(1 / h)
	}
}

// solveVelocities equalizes node velocities along each link.
func (s *SoftBody) solveVelocities() {
	for it := 0; it < s.Config.VIterations; it++ {
		for _, l := range s.Links {
			a, b := &s.Nodes[l.N0], &s.Nodes[l.N1]
			w := a.InvMass + b.InvMass
			if w == 0 {
				continue
			}
			n, dist := safeNormalize(b.X.Sub(a.X))
			if dist == 0 {
				continue
			}
			rel := b.V.Sub(a.V).Dot(n)
			a.V = a.V.Add(n.Mul(rel * a.InvMass / w))
			b.V = b.V.Sub(n.Mul(rel * b.InvMass / w))
		}
	}
}

func (s *SoftBody) debugDraw(d DebugDrawer, mode DebugMode) {
	if mode&(DrawWireframe|FastWireframe) != 0 {
		for _, l := range s.Links {
			d.DrawLine(s.Nodes[l.N0].X, s.Nodes[l.N1].X, softColor)
		}
	}
	if mode&DrawConstraints != 0 {
		for _, an := range s.Anchors {
			d.DrawLine(s.Nodes[an.Node].X, an.Body.worldPoint(an.LocalPivot), constraintColor)
		}
	}
	if mode&DrawAabb != 0 {
		lo, hi := s.AABB()
		drawBox(d, lo, hi, aabbColor)
	}
}
