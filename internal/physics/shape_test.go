package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalInertia(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		mass  float64
		want  mgl64.Vec3
	}{
		{"unit cube", NewBoxShape(mgl64.Vec3{0.5, 0.5, 0.5}), 6, mgl64.Vec3{1, 1, 1}},
		{"cylinder", NewCylinderShape(mgl64.Vec3{1, 1, 1}), 12, mgl64.Vec3{7, 6, 7}},
		{"cone", NewConeShape(2, 4), 10, mgl64.Vec3{12, 12, 12}},
		{"zero mass", NewBoxShape(mgl64.Vec3{1, 2, 3}), 0, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.CalculateLocalInertia(tt.mass)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.want[i], got[i], 1e-9, "axis %d", i)
			}
		})
	}
}

func TestCylinderCores(t *testing.T) {
	tall := NewCylinderShape(mgl64.Vec3{0.1, 2, 0.1}).cores()
	require.Len(t, tall, 1)
	seg, ok := tall[0].core.(segmentCore)
	require.True(t, ok)
	assert.InDelta(t, 1.9, seg.half, 1e-12)
	assert.InDelta(t, 0.1, tall[0].radius, 1e-12)

	flat := NewCylinderShape(mgl64.Vec3{1, 0.05, 1}).cores()
	require.Len(t, flat, 1)
	disk, ok := flat[0].core.(diskCore)
	require.True(t, ok)
	assert.InDelta(t, 0.95, disk.radius, 1e-12)
	assert.InDelta(t, 0.05, flat[0].radius, 1e-12)

	assert.Empty(t, NewConeShape(3, 1).cores())
}

func TestCompoundShape(t *testing.T) {
	c := NewCompoundShape()
	c.AddChildShape(NewTransform(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent()), NewCylinderShape(mgl64.Vec3{0.1, 2, 0.1}))

	require.Len(t, c.Children(), 1)
	cores := c.cores()
	require.Len(t, cores, 1)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, cores[0].local.Origin)

	half := c.LocalAABB()
	assert.InDelta(t, 1.1, half.X(), 1e-12)
	assert.InDelta(t, 2, half.Y(), 1e-12)
}

func TestClosestPoints(t *testing.T) {
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	tests := []struct {
		name     string
		a, b     worldCore
		wantDist float64
	}{
		{
			"parallel segments",
			worldCore{placedCore{core: segmentCore{half: 1}, local: IdentityTransform()}, IdentityTransform()},
			worldCore{placedCore{core: segmentCore{half: 1}, local: IdentityTransform()}, NewTransform(mgl64.Vec3{2, 0, 0}, mgl64.QuatIdent())},
			2,
		},
		{
			"box above disk",
			worldCore{placedCore{core: diskCore{radius: 1}, local: IdentityTransform()}, IdentityTransform()},
			worldCore{placedCore{core: boxCore{half: mgl64.Vec3{0.5, 0.5, 0.5}}, local: IdentityTransform()}, NewTransform(mgl64.Vec3{0.3, 3, 0}, mgl64.QuatIdent())},
			2.5,
		},
		{
			"crossed segments",
			worldCore{placedCore{core: segmentCore{half: 1}, local: IdentityTransform()}, IdentityTransform()},
			worldCore{placedCore{core: segmentCore{half: 1}, local: IdentityTransform()}, NewTransform(mgl64.Vec3{0, 0, 1}, rot)},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa, pb := closestPoints(tt.a, tt.b)
			assert.InDelta(t, tt.wantDist, pb.Sub(pa).Len(), 1e-6)
		})
	}
}

func TestWorldAABB(t *testing.T) {
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	lo, hi := worldAABB(NewTransform(mgl64.Vec3{1, 1, 1}, rot), mgl64.Vec3{2, 1, 0.5})
	assert.InDelta(t, 0, lo.X(), 1e-9)
	assert.InDelta(t, -1, lo.Y(), 1e-9)
	assert.InDelta(t, 2, hi.X(), 1e-9)
	assert.InDelta(t, 3, hi.Y(), 1e-9)
	assert.InDelta(t, 1.5, hi.Z(), 1e-9)
}
