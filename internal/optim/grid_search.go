package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chimesim/internal/analysis"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no grid point completed")

// RunFunc runs the chime with one set of parameter values.
type RunFunc func(ctx context.Context, params map[string]float64) (*sim.Result, error)

// GridSearch tries every combination of the given parameter values and
// keeps the one with the best metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes Search prefer larger metric values.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the best parameters and their metric value. Grid points
// whose run fails are skipped; cancellation stops the search.
func (g *GridSearch) Search(ctx context.Context, run RunFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), run, metricName, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if g.maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	run RunFunc,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		result, err := run(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		if g.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, run, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ChimeRunner builds a RunFunc that applies params through analysis.Params
// and runs with a fresh metric set from metrics.
func ChimeRunner(opts chime.Options, cfg sim.Config, metrics func() []sim.Metric) RunFunc {
	return func(ctx context.Context, params map[string]float64) (*sim.Result, error) {
		o := opts
		for name, v := range params {
			set, ok := analysis.Params[name]
			if !ok {
				return nil, fmt.Errorf("optim: unknown parameter %q", name)
			}
			set(&o, v)
		}
		s := sim.New(o, nil)
		for _, m := range metrics() {
			s.AddMetric(m)
		}
		return s.Run(ctx, cfg)
	}
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
