package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

const (
	width       = 60
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLen    = 60
	// top-down view half width in world units
	topSpan = 2.0
)

// LiveRenderer draws a headless run as it goes: the top-down path of the
// sail and clapper plus the current channel values. It is a sim.Observer.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	canvas    *canvas
	trail     []mgl64.Vec3
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		frameRate: max(frameRate, 1),
		canvas:    newCanvas(width, height),
		trail:     make([]mgl64.Vec3, 0, trailLen),
	}
}

func (r *LiveRenderer) OnStep(x sim.State, t float64) {
	sail := mgl64.Vec3{x[chime.SailX], 0, x[chime.SailZ]}
	r.trail = append(r.trail, sail)
	if len(r.trail) > trailLen {
		r.trail = r.trail[1:]
	}

	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.canvas = newCanvas(width, height)
	for i, p := range r.trail {
		ch := '·'
		if i >= len(r.trail)/2 {
			ch = '∘'
		}
		r.top(p, ch)
	}
	r.top(mgl64.Vec3{}, '+')
	r.top(mgl64.Vec3{x[chime.ClapperX], 0, x[chime.ClapperZ]}, '◎')
	r.top(sail, '▣')

	r.render(x, t)
}

// top plots a point of the x-z plane.
func (r *LiveRenderer) top(p mgl64.Vec3, ch rune) {
	col := int((p.X() + topSpan) / (2 * topSpan) * float64(width-1))
	row := int((p.Z() + topSpan) / (2 * topSpan) * float64(height-1))
	r.canvas.set(col, row, ch)
}

func (r *LiveRenderer) render(x sim.State, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  windchime  t=%.2fs  strikes=%d\n", t, int(x[chime.StrikeCount])))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas.cells {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  sail=(%.2f, %.2f, %.2f)  swing=%.1f°  KE=%.2f\n",
		x[chime.SailX], x[chime.SailY], x[chime.SailZ],
		x[chime.TubeSwing]*180/math.Pi, x[chime.KineticEnergy]))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
