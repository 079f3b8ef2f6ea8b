package scene

import (
	"github.com/san-kum/chimesim/internal/physics"
)

// Rope is a line-strip mesh mirroring a soft body: one vertex per node,
// segments (i, i+1).
type Rope struct {
	Name      string
	Positions []float32
	Indices   []uint16
	Material  Material

	// NeedsUpdate marks Positions for re-upload.
	NeedsUpdate bool

	Soft *physics.SoftBody
}

// NewRope lays out segments+1 vertices going up from (x, y, z) in steps of
// length/segments.
func NewRope(name string, segments int, length float64, x, y, z float64) *Rope {
	r := &Rope{
		Name:      name,
		Positions: make([]float32, 0, 3*(segments+1)),
		Indices:   make([]uint16, 0, 2*segments),
		Material:  Material{Color: Black, Shading: LineBasic},
	}
	step := length / float64(segments)
	for i := 0; i <= segments; i++ {
		r.Positions = append(r.Positions, float32(x), float32(y+float64(i)*step), float32(z))
	}
	for i := 0; i < segments; i++ {
		r.Indices = append(r.Indices, uint16(i), uint16(i+1))
	}
	return r
}

func (r *Rope) NumVertices() int { return len(r.Positions) / 3 }

// Vertex returns vertex i.
func (r *Rope) Vertex(i int) (x, y, z float32) {
	return r.Positions[3*i], r.Positions[3*i+1], r.Positions[3*i+2]
}

// CopyNodes writes node positions into the vertex buffer and flags it.
// Only as many nodes as the buffer has vertices are copied.
func (r *Rope) CopyNodes(nodes []physics.Node) {
	n := min(r.NumVertices(), len(nodes))
	k := 0
	for i := 0; i < n; i++ {
		p := nodes[i].X
		r.Positions[k] = float32(p.X())
		r.Positions[k+1] = float32(p.Y())
		r.Positions[k+2] = float32(p.Z())
		k += 3
	}
	r.NeedsUpdate = true
}

// LineBuffer is a vertex-colored line list with a draw range, fed by a
// debug drawer.
type LineBuffer struct {
	Vertices []float32
	Colors   []float32

	DrawStart, DrawCount int

	PositionNeedsUpdate bool
	ColorNeedsUpdate    bool
}

func NewLineBuffer(vertices, colors []float32) *LineBuffer {
	return &LineBuffer{Vertices: vertices, Colors: colors}
}

func (b *LineBuffer) SetDrawRange(start, count int) {
	b.DrawStart, b.DrawCount = start, count
}

// Segment returns the endpoints and color of line i within the draw range.
func (b *LineBuffer) Segment(i int) (from, to [3]float32, color [3]float32) {
	v := 3 * (b.DrawStart + 2*i)
	copy(from[:], b.Vertices[v:v+3])
	copy(to[:], b.Vertices[v+3:v+6])
	copy(color[:], b.Colors[v:v+3])
	return from, to, color
}

// NumSegments is the number of whole lines inside the draw range.
func (b *LineBuffer) NumSegments() int {
	return b.DrawCount / 2
}
