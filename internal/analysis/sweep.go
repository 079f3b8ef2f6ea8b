package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

// Params are the options a sweep can vary.
var Params = map[string]func(*chime.Options, float64){
	"tube_mass":      func(o *chime.Options, v float64) { o.Scene.TubeMass = v },
	"clapper_mass":   func(o *chime.Options, v float64) { o.Scene.ClapperMass = v },
	"sail_mass":      func(o *chime.Options, v float64) { o.Scene.SailMass = v },
	"cone_mass":      func(o *chime.Options, v float64) { o.Scene.ConeMass = v },
	"hanging_radius": func(o *chime.Options, v float64) { o.Scene.HangingRadius = v },
	"impulse_scale":  func(o *chime.Options, v float64) { o.ImpulseScale = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for n := range Params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BifurcationPoint holds the distinct values a channel visits after the
// transient for one parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram sweeps param over [lo, hi] and records, for each
// value, the distinct samples of channel after transient seconds.
func BifurcationDiagram(ctx context.Context, opts chime.Options, param string, lo, hi float64, steps int, channel string, cfg sim.Config, transient float64) ([]BifurcationPoint, error) {
	set, ok := Params[param]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown parameter %q", param)
	}
	idx, ok := chime.ChannelIndex(channel)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown channel %q", channel)
	}
	if steps <= 1 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		v := lo + float64(i)*step
		o := opts
		set(&o, v)

		res, err := sim.New(o, nil).Run(ctx, cfg)
		if err != nil {
			return results, err
		}

		values := make([]float64, 0, 100)
		seen := make(map[int]bool)
		for k, x := range res.States {
			if res.Times[k] < transient {
				continue
			}
			key := int(x[idx] * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, x[idx])
			}
		}
		results = append(results, BifurcationPoint{Param: v, Values: values})
	}
	return results, nil
}

// BifurcationToASCII plots the diagram with the parameter along x.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}
	return canvasString(canvas)
}

func newCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func canvasString(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
