package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble repeats a run across consecutive seeds. Every run builds its own
// world, so runs share nothing but the options.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	metrics   func() []Metric
	limit     int
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart, limit: runtime.NumCPU()}
}

// WithMetrics gives each run a fresh metric set from fn.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

// SetLimit caps the number of concurrent runs.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Run returns results in seed order. The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			sim := New(e.base.opts, nil)
			sim.log = e.base.log
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			res, err := sim.Run(ctx, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
