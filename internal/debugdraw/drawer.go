package debugdraw

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/physics"
)

// DefaultBufferSize is the float count of each of the vertex and color buffers.
const DefaultBufferSize = 3 * 1000000

// Drawer writes the world's debug lines into flat float32 vertex and color
// buffers, three floats per vertex.
type Drawer struct {
	world    *physics.World
	vertices []float32
	colors   []float32
	mode     physics.DebugMode
	enabled  bool
	warned   bool
	log      *logging.Logger

	// Index counts vertices written since the last Update.
	Index int
}

var _ physics.DebugDrawer = (*Drawer)(nil)

// New wraps caller-owned buffers. The starting mode is DrawWireframe and the
// drawer is disabled until Enable.
func New(world *physics.World, vertices, colors []float32, log *logging.Logger) *Drawer {
	return &Drawer{
		world:    world,
		vertices: vertices,
		colors:   colors,
		mode:     physics.DrawWireframe,
		log:      log,
	}
}

// NewBuffered allocates DefaultBufferSize buffers.
func NewBuffered(world *physics.World, log *logging.Logger) *Drawer {
	return New(world, make([]float32, DefaultBufferSize), make([]float32, DefaultBufferSize), log)
}

func (d *Drawer) Vertices() []float32 { return d.vertices }
func (d *Drawer) Colors() []float32   { return d.colors }
func (d *Drawer) Enabled() bool       { return d.enabled }

// Capacity is the number of vertices the buffers can hold.
func (d *Drawer) Capacity() int {
	return min(len(d.vertices), len(d.colors)) / 3
}

// Enable attaches the drawer to the world.
func (d *Drawer) Enable() {
	d.enabled = true
	d.world.SetDebugDrawer(d)
}

// Disable detaches the drawer. The buffers keep their last contents.
func (d *Drawer) Disable() {
	d.enabled = false
	d.world.SetDebugDrawer(nil)
}

// Update rewrites the buffers from the current world state.
func (d *Drawer) Update() {
	if !d.enabled {
		return
	}
	d.Index = 0
	d.world.DebugDrawWorld()
}

func (d *Drawer) SetDebugMode(mode physics.DebugMode) { d.mode = mode }
func (d *Drawer) DebugMode() physics.DebugMode        { return d.mode }

// Toggle flips the given mode bits.
func (d *Drawer) Toggle(mode physics.DebugMode) {
	d.mode ^= mode
}

func (d *Drawer) DrawLine(from, to, color mgl64.Vec3) {
	if d.Index+2 > d.Capacity() {
		return
	}
	d.put(from, color)
	d.put(to, color)
}

// DrawContactPoint draws the normal at point scaled by distance.
func (d *Drawer) DrawContactPoint(point, normal mgl64.Vec3, distance float64, lifeTime int, color mgl64.Vec3) {
	d.DrawLine(point, point.Add(normal.Mul(distance)), color)
}

func (d *Drawer) ReportErrorWarning(msg string) {
	d.log.Warn("physics warning", logging.String("msg", msg))
}

func (d *Drawer) Draw3DText(location mgl64.Vec3, text string) {
	if d.warned {
		return
	}
	d.warned = true
	d.log.Debug("debug text is not rendered", logging.String("text", text))
}

func (d *Drawer) put(p, c mgl64.Vec3) {
	i := 3 * d.Index
	d.vertices[i] = float32(p.X())
	d.vertices[i+1] = float32(p.Y())
	d.vertices[i+2] = float32(p.Z())
	d.colors[i] = float32(c.X())
	d.colors[i+1] = float32(c.Y())
	d.colors[i+2] = float32(c.Z())
	d.Index++
}
