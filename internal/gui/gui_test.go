package gui

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/scene"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestDefaultOrbitPosition(t *testing.T) {
	o := DefaultOrbit()
	p := o.Position()
	if !near(p.X, -7) || !near(p.Y, 10) || !near(p.Z, -20) {
		t.Errorf("expected eye (-7, 10, -20), got %v", p)
	}
	if o.Target.Y != 2 {
		t.Errorf("expected target y 2, got %f", o.Target.Y)
	}
}

func TestOrbitClamps(t *testing.T) {
	o := DefaultOrbit()
	o.Rotate(0, 10)
	if o.Pitch != 1.5 {
		t.Errorf("expected pitch clamped to 1.5, got %f", o.Pitch)
	}
	for i := 0; i < 100; i++ {
		o.Zoom(5)
	}
	if o.Distance != 3 {
		t.Errorf("expected distance clamped to 3, got %f", o.Distance)
	}
}

func TestAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		q     mgl64.Quat
		axis  rl.Vector3
		angle float32
	}{
		{"identity", mgl64.QuatIdent(), rl.NewVector3(0, 1, 0), 0},
		{"quarter turn x", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}), rl.NewVector3(1, 0, 0), 90},
		{"half turn z", mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}), rl.NewVector3(0, 0, 1), 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis, angle := axisAngle(tt.q)
			if !near(angle, tt.angle) {
				t.Errorf("expected angle %f, got %f", tt.angle, angle)
			}
			if !near(axis.X, tt.axis.X) || !near(axis.Y, tt.axis.Y) || !near(axis.Z, tt.axis.Z) {
				t.Errorf("expected axis %v, got %v", tt.axis, axis)
			}
		})
	}
}

func TestMeshFrame(t *testing.T) {
	off, rot := meshFrame(scene.Cylinder(0.1, 4, 8))
	if off.Y() != -2 || rot != mgl64.QuatIdent() {
		t.Errorf("expected base offset -2, got %v %v", off, rot)
	}
	_, rot = meshFrame(scene.Plane(0.5, 0.5))
	up := rot.Rotate(mgl64.Vec3{0, 1, 0})
	if math.Abs(up.Z()-1) > 1e-9 {
		t.Errorf("expected plane normal on +z, got %v", up)
	}
}

func TestColorOf(t *testing.T) {
	c := colorOf(scene.Sky)
	if c.R != 0xbf || c.G != 0xd1 || c.B != 0xe5 || c.A != 255 {
		t.Errorf("unexpected color %v", c)
	}
}

func TestPairs(t *testing.T) {
	got := pairs([]uint16{0, 1, 1, 2, 2})
	if len(got) != 2 || got[1] != [2]uint16{1, 2} {
		t.Errorf("unexpected pairs %v", got)
	}
}
