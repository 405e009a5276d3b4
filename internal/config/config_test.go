package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Gravity.Strength >= 0 {
		t.Errorf("expected attracting sun, got strength %g", cfg.Gravity.Strength)
	}
	if len(cfg.Scene.Bunnies) != 5 {
		t.Errorf("expected 5 bunnies, got %d", len(cfg.Scene.Bunnies))
	}
	if cfg.Scene.Impulse != dynamo.V(35000, 17000) {
		t.Errorf("unexpected impulse %v", cfg.Scene.Impulse)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravsim.yaml")

	cfg := DefaultConfig()
	cfg.Gravity.Exponent = 1.5
	cfg.Scene.Bunnies = []dynamo.Vec2{{X: 1, Y: 2}}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Gravity.Exponent != 1.5 {
		t.Errorf("expected exponent 1.5, got %g", loaded.Gravity.Exponent)
	}
	if len(loaded.Scene.Bunnies) != 1 || loaded.Scene.Bunnies[0] != dynamo.V(1, 2) {
		t.Errorf("bunnies not preserved: %v", loaded.Scene.Bunnies)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero exponent stays default", nil},
		{"negative exponent", func(c *Config) { c.Gravity.Exponent = -1 }},
		{"negative epsilon", func(c *Config) { c.Gravity.Epsilon = -1 }},
		{"bad mode", func(c *Config) { c.Gravity.Degenerate = "explode" }},
		{"zero dt", func(c *Config) { c.Engine.Dt = 0 }},
		{"zero width", func(c *Config) { c.Scene.Width = 0 }},
		{"no steps", func(c *Config) { c.Scene.StepsPerFrame = 0 }},
		{"zero fps", func(c *Config) { c.Run.FPS = 0 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		if tt.mutate == nil {
			cfg.Gravity.Exponent = 0
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		tt.mutate(cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", tt.name, err)
		}
	}
}

func TestGravityLaw(t *testing.T) {
	law, err := GravityConfig{Degenerate: "skip"}.Law()
	if err != nil {
		t.Fatal(err)
	}
	if law.Exponent != physics.DefaultExponent || law.Epsilon != physics.DefaultEpsilon {
		t.Errorf("expected defaults, got %+v", law)
	}
	if law.Degenerate != physics.DegenerateSkip {
		t.Errorf("expected skip, got %v", law.Degenerate)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("linear")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Gravity.Exponent != 1 {
		t.Errorf("expected exponent 1, got %g", cfg.Gravity.Exponent)
	}

	cfg.Scene.Bunnies[0] = dynamo.V(-1, -1)
	if Presets["linear"].Scene.Bunnies[0] == dynamo.V(-1, -1) {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
	if names[0] != "classic" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for name, value := range map[string]float64{
		"strength":        -1000,
		"exponent":        1,
		"epsilon":         5,
		"bunny_strength":  -10,
		"impulse_x":       1,
		"impulse_y":       2,
		"steps_per_frame": 4,
		"dt":              0.01,
	} {
		if err := cfg.SetParam(name, value); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := cfg.Params()[name]; got != value {
			t.Errorf("%s: expected %v, got %v", name, value, got)
		}
	}

	if err := cfg.SetParam("mass", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestSetParamRejectsNonPositiveLaw(t *testing.T) {
	for _, name := range []string{"exponent", "epsilon"} {
		for _, value := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			cfg := DefaultConfig()
			before := cfg.Params()[name]
			if err := cfg.SetParam(name, value); !errors.Is(err, ErrInvalid) {
				t.Errorf("%s=%v: expected ErrInvalid, got %v", name, value, err)
			}
			if got := cfg.Params()[name]; got != before {
				t.Errorf("%s=%v: value changed to %v", name, value, got)
			}
		}
	}
}

func TestValidateEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Kind = "bullet"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown engine, got %v", err)
	}

	cfg = GetPreset("particles")
	if cfg.Engine.ToEngine().Kind != engine.KindPointMass {
		t.Errorf("particles should run on point masses, got %q", cfg.Engine.Kind)
	}
	cfg.Engine.Integrator = "midpoint"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown integrator, got %v", err)
	}
}
