package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/chimesim/internal/analysis"
)

// Point is one vertex of a plotted path.
type Point struct{ X, Y float64 }

// Series pairs a channel's samples with their times.
func Series(times, values []float64) []Point {
	n := min(len(times), len(values))
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = Point{times[i], values[i]}
	}
	return out
}

// Portrait converts a phase portrait into plot points.
func Portrait(p *analysis.PhasePortrait2D) []Point {
	out := make([]Point, len(p.Points))
	for i, q := range p.Points {
		out[i] = Point{q.X, q.Y}
	}
	return out
}

type bounds struct{ minX, minY, rangeX, rangeY float64 }

// fit pads the bounding box of points by 10% on each side.
func fit(points []Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}
}

// PathToSVG writes points as one stroked path on a light background, with an
// optional caption in the top-left corner.
func PathToSVG(w io.Writer, points []Point, width, height int, stroke, caption string) error {
	if len(points) < 2 {
		return fmt.Errorf("export: need at least 2 points, got %d", len(points))
	}
	b := fit(points)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#bfd1e5"/>
`, width, height, width, height))
	if caption != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" font-family="monospace" font-size="14" fill="#202020">%s</text>
`, escape(caption)))
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))

	for i, p := range points {
		x := (p.X - b.minX) / b.rangeX * float64(width)
		y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>
`)
	_, err := io.WriteString(w, sb.String())
	return err
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return svgEscaper.Replace(s) }
