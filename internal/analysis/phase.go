package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/chimesim/internal/sim"
)

// PhasePortrait2D pairs two recorded channels sample by sample.
type PhasePortrait2D struct {
	XName, YName string
	Points       []struct{ X, Y float64 }
}

// GeneratePhasePortrait reads two channels of a run, e.g. sail_x against
// sail_z for the sail's top-down path.
func GeneratePhasePortrait(r *sim.Result, xName, yName string) (*PhasePortrait2D, error) {
	xs, ok := r.Channel(xName)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown channel %q", xName)
	}
	ys, ok := r.Channel(yName)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown channel %q", yName)
	}

	portrait := &PhasePortrait2D{
		XName:  xName,
		YName:  yName,
		Points: make([]struct{ X, Y float64 }, len(xs)),
	}
	for i := range xs {
		portrait.Points[i].X = xs[i]
		portrait.Points[i].Y = ys[i]
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := newCanvas(width, height)
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	return canvasString(canvas)
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []struct{ X, Y float64 }
}

// GeneratePoincareSection samples two channels each time crossName rises
// through threshold, interpolating between the bracketing frames.
func GeneratePoincareSection(r *sim.Result, crossName string, threshold float64, xName, yName string) (*PoincareSection, error) {
	cross, ok := r.Channel(crossName)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown channel %q", crossName)
	}
	portrait, err := GeneratePhasePortrait(r, xName, yName)
	if err != nil {
		return nil, err
	}

	section := &PoincareSection{Points: make([]struct{ X, Y float64 }, 0)}
	for i := 1; i < len(cross); i++ {
		prev, cur := cross[i-1], cross[i]
		if !(prev < threshold && cur >= threshold) {
			continue
		}
		frac := (threshold - prev) / (cur - prev)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		a, b := portrait.Points[i-1], portrait.Points[i]
		section.Points = append(section.Points, struct{ X, Y float64 }{
			X: a.X + frac*(b.X-a.X),
			Y: a.Y + frac*(b.Y-a.Y),
		})
	}
	return section, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
