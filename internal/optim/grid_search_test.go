package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Run.Frames = 5
	return cfg
}

func TestGridSearchVisitsEveryCombination(t *testing.T) {
	g := NewGridSearch(
		[]string{"impulse_x", "steps_per_frame"},
		[][]float64{{0, 35000}, {1, 2, 3}},
	)

	best, value, trials, err := g.Search(context.Background(), baseConfig(), "kinetic_energy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(trials) != 6 {
		t.Errorf("expected 6 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Err == nil && tr.Value < value {
			t.Errorf("trial %v beat the reported best %v", tr.Params, value)
		}
	}
	// no impulse keeps the bunnies slowest
	if best["impulse_x"] != 0 {
		t.Errorf("expected impulse_x 0 to win, got %v", best)
	}
}

func TestGridSearchRejectsUnknownParam(t *testing.T) {
	g := NewGridSearch([]string{"mass"}, [][]float64{{1}})
	_, _, _, err := g.Search(context.Background(), baseConfig(), "kinetic_energy")
	if !errors.Is(err, config.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestGridSearchMismatchedRanges(t *testing.T) {
	g := NewGridSearch([]string{"strength", "epsilon"}, [][]float64{{1}})
	if _, _, _, err := g.Search(context.Background(), baseConfig(), "kinetic_energy"); err == nil {
		t.Error("expected error for mismatched ranges")
	}
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]string{"strength"}, [][]float64{{-1000}})
	_, _, trials, err := g.Search(context.Background(), baseConfig(), "lyapunov")
	if err == nil {
		t.Fatal("expected error when no trial produces the metric")
	}
	if len(trials) != 1 || trials[0].Err == nil {
		t.Errorf("expected one failed trial, got %+v", trials)
	}
}

func TestGridSearchInvalidTrial(t *testing.T) {
	// a negative epsilon fails validation
	g := NewGridSearch([]string{"epsilon"}, [][]float64{{-1, 1}})
	best, _, trials, err := g.Search(context.Background(), baseConfig(), "kinetic_energy")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if trials[0].Err == nil {
		t.Error("negative epsilon should fail")
	}
	if best["epsilon"] != 1 {
		t.Errorf("expected epsilon 1 to win, got %v", best)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"strength"}, [][]float64{{-1000, -2000}})
	if _, _, _, err := g.Search(ctx, baseConfig(), "kinetic_energy"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
