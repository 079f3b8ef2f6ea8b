package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/physics"
)

func TestNewRopeLayout(t *testing.T) {
	r := NewRope("rope", 6, 3.0, 0, 1, 0)

	if r.NumVertices() != 7 {
		t.Fatalf("expected 7 vertices, got %d", r.NumVertices())
	}
	if len(r.Indices) != 12 {
		t.Fatalf("expected 12 indices, got %d", len(r.Indices))
	}
	for i := 0; i < 6; i++ {
		if r.Indices[2*i] != uint16(i) || r.Indices[2*i+1] != uint16(i+1) {
			t.Errorf("segment %d: expected (%d,%d), got (%d,%d)", i, i, i+1, r.Indices[2*i], r.Indices[2*i+1])
		}
	}
	_, y, _ := r.Vertex(6)
	if y != 4 {
		t.Errorf("expected top vertex at y=4, got %f", y)
	}
	if r.Material.Color != Black {
		t.Errorf("expected black rope, got %s", r.Material.Color)
	}
}

func TestRopeCopyNodes(t *testing.T) {
	r := NewRope("rope", 2, 2, 0, 0, 0)
	nodes := []physics.Node{
		{X: mgl64.Vec3{1, 2, 3}},
		{X: mgl64.Vec3{4, 5, 6}},
		{X: mgl64.Vec3{7, 8, 9}},
		{X: mgl64.Vec3{10, 11, 12}},
	}

	r.CopyNodes(nodes)

	if !r.NeedsUpdate {
		t.Error("expected NeedsUpdate after copy")
	}
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for i, v := range want {
		if r.Positions[i] != v {
			t.Errorf("position %d: expected %f, got %f", i, v, r.Positions[i])
		}
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		color   Color
		r, g, b uint8
		str     string
	}{
		{Magenta, 255, 0, 255, "#ff00ff"},
		{Sky, 0xbf, 0xd1, 0xe5, "#bfd1e5"},
		{DarkGray, 0x20, 0x20, 0x20, "#202020"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			r, g, b := tt.color.RGB()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("expected (%d,%d,%d), got (%d,%d,%d)", tt.r, tt.g, tt.b, r, g, b)
			}
			if tt.color.String() != tt.str {
				t.Errorf("expected %s, got %s", tt.str, tt.color.String())
			}
		})
	}
}

func TestLineBufferSegments(t *testing.T) {
	b := NewLineBuffer(
		[]float32{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3},
		[]float32{1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0},
	)
	b.SetDrawRange(0, 4)

	if b.NumSegments() != 2 {
		t.Fatalf("expected 2 segments, got %d", b.NumSegments())
	}
	from, to, color := b.Segment(1)
	if from != [3]float32{2, 2, 2} || to != [3]float32{3, 3, 3} {
		t.Errorf("unexpected segment endpoints %v %v", from, to)
	}
	if color != [3]float32{0, 1, 0} {
		t.Errorf("expected green, got %v", color)
	}
}

func TestGroupFind(t *testing.T) {
	g := NewGroup()
	g.AddMesh(NewMesh("hook", Box(0.25, 0.25, 0.25), Material{Color: Magenta}))

	m, ok := g.Find("hook")
	if !ok || m.Geometry.Kind != BoxGeometry {
		t.Fatalf("expected hook box, got %v %v", m, ok)
	}
	if _, ok := g.Find("missing"); ok {
		t.Error("expected missing mesh not to be found")
	}
}
