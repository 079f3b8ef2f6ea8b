package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/sim"
)

// fakeRun scores a grid point as (a-2)^2 + b.
func fakeRun(_ context.Context, p map[string]float64) (*sim.Result, error) {
	if p["a"] < 0 {
		return nil, errors.New("rejected")
	}
	v := (p["a"]-2)*(p["a"]-2) + p["b"]
	return &sim.Result{Metrics: map[string]float64{"score": v}}, nil
}

func TestGridSearch(t *testing.T) {
	tests := []struct {
		name     string
		maximize bool
		wantA    float64
		wantB    float64
		wantVal  float64
	}{
		{"minimize", false, 2, 0, 0},
		{"maximize", true, 5, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGridSearch([]string{"a", "b"}, [][]float64{{-1, 0, 2, 5}, {0, 1}})
			if tt.maximize {
				g.Maximize()
			}
			params, val, err := g.Search(context.Background(), fakeRun, "score")
			if err != nil {
				t.Fatal(err)
			}
			if params["a"] != tt.wantA || params["b"] != tt.wantB {
				t.Errorf("expected a=%g b=%g, got %v", tt.wantA, tt.wantB, params)
			}
			if val != tt.wantVal {
				t.Errorf("expected %g, got %g", tt.wantVal, val)
			}
		})
	}
}

func TestGridSearchNoCandidate(t *testing.T) {
	g := NewGridSearch([]string{"a"}, [][]float64{{-2, -1}})
	if _, _, err := g.Search(context.Background(), fakeRun, "score"); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	if _, _, err := g.Search(ctx, fakeRun, "score"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSize(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {1, 2}})
	if g.Size() != 6 {
		t.Errorf("expected 6 points, got %d", g.Size())
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(1, 2, 5)
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %g, got %g", i, want[i], got[i])
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("expected a single value for n=1")
	}
}

func TestChimeRunner(t *testing.T) {
	run := ChimeRunner(chime.DefaultOptions(), sim.Config{Dt: 1.0 / 60, Duration: 0.1}, func() []sim.Metric { return nil })
	if _, err := run(context.Background(), map[string]float64{"wingspan": 1}); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
	r, err := run(context.Background(), map[string]float64{"tube_mass": 5})
	if err != nil {
		t.Fatal(err)
	}
	if r.Frames != 6 {
		t.Errorf("expected 6 frames, got %d", r.Frames)
	}
}
