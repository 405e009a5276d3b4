package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/storage"
)

const scenarioYAML = `
name: tour
description: two quick presets
steps:
  - preset: classic
    frames: 4
    save: true
  - name: weak-linear
    preset: linear
    frames: 3
    params:
      strength: -1000
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "tour" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Params["strength"] != -1000 {
		t.Errorf("expected strength override, got %v", sc.Steps[1].Params)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Preset: "linear", Frames: 7, Params: map[string]float64{"epsilon": 3}}.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gravity.Exponent != 1 || cfg.Gravity.Epsilon != 3 || cfg.Run.Frames != 7 {
		t.Errorf("unexpected config %+v", cfg.Gravity)
	}

	if _, err := (ScenarioStep{Preset: "nope"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{Params: map[string]float64{"mass": 1}}).Config(); !errors.Is(err, config.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := (ScenarioStep{Params: map[string]float64{"epsilon": -1}}).Config(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestStepConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := config.DefaultConfig()
	cfg.Gravity.Strength = -42
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := ScenarioStep{ConfigFile: path, Preset: "swarm"}.Config()
	if err != nil {
		t.Fatal(err)
	}
	if got.Gravity.Strength != -42 {
		t.Errorf("config file should win over preset, got %v", got.Gravity.Strength)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())

	results, err := RunScenario(context.Background(), sc, store, nil)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "classic" || results[1].Name != "weak-linear" {
		t.Errorf("unexpected names %q, %q", results[0].Name, results[1].Name)
	}
	if results[0].RunID == "" || results[1].RunID != "" {
		t.Errorf("only the first step should be saved: %q, %q", results[0].RunID, results[1].RunID)
	}
	if results[1].Result.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", results[1].Result.Frames)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 stored run, got %d", len(runs))
	}
}

func TestRunScenarioSaveWithoutStore(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Frames: 1, Save: true}}}
	if _, err := RunScenario(context.Background(), sc, nil, nil); err == nil {
		t.Error("expected error when saving without a store")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Frames = 3

	cfg := &MonteCarloConfig{Base: base, Perturbation: 10, NumTrials: 4, Seed: 7}
	results, err := RunMonteCarlo(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(results))
	}

	moved := false
	for i, b := range results[0].Bunnies {
		d := b.Sub(base.Scene.Bunnies[i])
		if d.X < -10 || d.X > 10 || d.Y < -10 || d.Y > 10 {
			t.Errorf("bunny %d moved further than the perturbation: %v", i, d)
		}
		if d.X != 0 || d.Y != 0 {
			moved = true
		}
	}
	if !moved {
		t.Error("expected perturbed bunnies")
	}

	// the default bunny at (-100, -200) starts outside the scene
	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 4 || unstable == 0 {
		t.Errorf("unexpected stats %d stable, %d unstable", stable, unstable)
	}
}

func TestRunMonteCarloNoTrials(t *testing.T) {
	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: config.DefaultConfig()}, nil); err == nil {
		t.Error("expected error for zero trials")
	}
}
