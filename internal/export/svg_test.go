package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/chimesim/internal/analysis"
)

func TestPathToSVG(t *testing.T) {
	var buf bytes.Buffer
	pts := Series([]float64{0, 1, 2}, []float64{0, 1, 0})
	if err := PathToSVG(&buf, pts, 100, 50, "#ff0000", "sail_x <m>"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{`width="100"`, `stroke="#ff0000"`, "sail_x &lt;m&gt;", " L"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	// first point sits 10% in from the left edge
	if !strings.Contains(out, `d="M8.3,`) {
		t.Errorf("unexpected first point in %s", out)
	}
}

func TestPathToSVGTooShort(t *testing.T) {
	var buf bytes.Buffer
	if err := PathToSVG(&buf, []Point{{1, 1}}, 10, 10, "#000", ""); err == nil {
		t.Error("expected an error for a single point")
	}
}

func TestSeriesAndPortrait(t *testing.T) {
	if got := Series([]float64{0, 1, 2}, []float64{5, 6}); len(got) != 2 || got[1] != (Point{1, 6}) {
		t.Errorf("unexpected series %v", got)
	}

	p := &analysis.PhasePortrait2D{XName: "a", YName: "b"}
	p.Points = append(p.Points, struct{ X, Y float64 }{1, 2})
	if got := Portrait(p); len(got) != 1 || got[0] != (Point{1, 2}) {
		t.Errorf("unexpected portrait points %v", got)
	}
}
