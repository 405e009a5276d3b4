package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/world"
)

func smallConfig(frames, every int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Run.Frames = frames
	cfg.Run.SampleEvery = every
	return cfg
}

func TestRunnerRun(t *testing.T) {
	cfg := smallConfig(10, 5)
	cfg.Scene.StepsPerFrame = 2

	result, err := New(cfg, WithPreset("classic")).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 10 || result.Steps != 20 {
		t.Errorf("expected 10 frames and 20 steps, got %d and %d", result.Frames, result.Steps)
	}
	// frames 0 and 5, five bunnies each
	if len(result.Points) != 10 {
		t.Errorf("expected 10 points, got %d", len(result.Points))
	}
	if len(result.Energy) != 10 {
		t.Errorf("expected 10 energy samples, got %d", len(result.Energy))
	}
	if result.Energy[0] <= 0 {
		t.Error("bunnies should start moving")
	}
	if len(result.Bodies()) != 5 {
		t.Errorf("expected 5 bodies, got %v", result.Bodies())
	}
	if track := result.Track(result.Bodies()[0]); len(track) != 2 || track[1].Frame != 5 {
		t.Errorf("unexpected track %v", track)
	}
	if _, ok := result.Metrics["max_force"]; !ok {
		t.Error("expected max_force metric")
	}
	if result.Stats.Steps != 20 {
		t.Errorf("expected world stats for 20 steps, got %d", result.Stats.Steps)
	}
}

func TestRunnerInvalid(t *testing.T) {
	tests := []struct {
		frames, every int
	}{
		{0, 1},
		{10, 0},
	}
	for _, tt := range tests {
		if _, err := New(smallConfig(tt.frames, tt.every)).Run(context.Background()); err == nil {
			t.Errorf("frames=%d every=%d: expected error", tt.frames, tt.every)
		}
	}
}

func TestRunnerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(smallConfig(100, 1)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Frames != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestRunWithCallback_Stop(t *testing.T) {
	calls := 0
	err := New(smallConfig(100, 1)).RunWithCallback(context.Background(), func(i int, f world.Frame) bool {
		calls++
		return i < 2
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestEnsemble(t *testing.T) {
	configs := map[string]*config.Config{}
	for _, name := range []string{"classic", "repulsive", "linear"} {
		cfg := config.GetPreset(name)
		cfg.Run.Frames = 5
		configs[name] = cfg
	}

	results, err := NewEnsemble(configs, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for name, r := range results {
		if r.Preset != name || r.Frames != 5 {
			t.Errorf("%s: got preset %s frames %d", name, r.Preset, r.Frames)
		}
	}
}
