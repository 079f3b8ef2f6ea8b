package tui

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/chime"
)

// Front view bounds of the chime in world units.
const (
	viewMinX = -4.0
	viewMaxX = 4.0
	viewMinY = 0.0
	viewMaxY = 11.0
)

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", w))
	}
	return c
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) get(x, y int) rune {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		return c.cells[y][x]
	}
	return ' '
}

// project maps a world point onto the front (x-y) view.
func (c *canvas) project(p mgl64.Vec3) (int, int) {
	col := int((p.X() - viewMinX) / (viewMaxX - viewMinX) * float64(c.w-1))
	row := c.h - 1 - int((p.Y()-viewMinY)/(viewMaxY-viewMinY)*float64(c.h-1))
	return col, row
}

func (c *canvas) line(a, b mgl64.Vec3, r rune) {
	x1, y1 := c.project(a)
	x2, y2 := c.project(b)
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvas) point(p mgl64.Vec3, r rune) {
	x, y := c.project(p)
	c.set(x, y, r)
}

func (c *canvas) String() string {
	var sb strings.Builder
	for _, row := range c.cells {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// drawChime renders the front view. hot marks a tube that was just struck.
func drawChime(c *canvas, w *chime.Windchime, hot int) {
	ground := mgl64.Vec3{viewMinX, 0, 0}
	c.line(ground, mgl64.Vec3{viewMaxX, 0, 0}, '▁')

	cone := w.Cone.Body.WorldTransform()
	c.line(cone.Apply(mgl64.Vec3{-3, -0.5, 0}), cone.Apply(mgl64.Vec3{0, 0.5, 0}), '/')
	c.line(cone.Apply(mgl64.Vec3{0, 0.5, 0}), cone.Apply(mgl64.Vec3{3, -0.5, 0}), '\\')

	half := w.Options().Scene.TubeLength / 2
	tube := func(i int, r rune) {
		tr := w.Tubes[i].Body.WorldTransform()
		c.line(tr.Apply(mgl64.Vec3{0, half, 0}), tr.Apply(mgl64.Vec3{0, -half, 0}), r)
	}
	for i := range w.Tubes {
		if i != hot {
			tube(i, '│')
		}
	}
	// tubes overlap in the front view; the struck one stays on top
	if hot >= 0 && hot < len(w.Tubes) {
		tube(hot, '█')
	}

	for _, rope := range w.Ropes {
		nodes := rope.Soft.Nodes
		for k := 1; k < len(nodes); k++ {
			c.line(nodes[k-1].X, nodes[k].X, '┊')
		}
	}

	cl := w.Clapper.Body.WorldTransform()
	c.line(cl.Apply(mgl64.Vec3{-1, 0, 0}), cl.Apply(mgl64.Vec3{1, 0, 0}), '═')

	c.point(w.Hook.Body.Position(), '◆')
	c.point(w.Sail.Body.Position(), '▣')
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	start := max(0, len(data)-width)
	var sb strings.Builder
	for _, v := range data[start:] {
		idx := int((v - minVal) / rang * 7)
		sb.WriteRune(chars[max(0, min(idx, 7))])
	}
	return sb.String()
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
