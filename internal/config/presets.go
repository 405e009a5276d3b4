package config

import (
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/physics"
)

// Presets are the playground's experiment variants.
var Presets = map[string]*Config{
	"classic":   DefaultConfig(),
	"repulsive": repulsive(),
	"linear":    linear(),
	"swarm":     swarm(),
	"particles": particles(),
}

func repulsive() *Config {
	cfg := DefaultConfig()
	cfg.Gravity.Strength = -DefaultSunStrength
	cfg.Scene.Impulse = dynamo.Vec2{}
	return cfg
}

// linear falls off as 1/d, with strength matched to classic at 300px.
func linear() *Config {
	cfg := DefaultConfig()
	cfg.Gravity.Exponent = 1
	cfg.Gravity.Strength = DefaultSunStrength / 300
	return cfg
}

// swarm rings the sun with bunnies that also pull on each other.
func swarm() *Config {
	cfg := DefaultConfig()
	cfg.Gravity.Degenerate = physics.DegenerateSkip.String()
	cfg.Gravity.Epsilon = 2 * DefaultHalfExtent
	cfg.Scene.BunnyStrength = -2000000
	cfg.Scene.StepsPerFrame = 2
	cfg.Scene.Bunnies = ring(dynamo.V(DefaultWidth/2, DefaultHeight/2), 250, 16)
	cfg.Scene.Impulse = dynamo.V(DefaultImpulseX/2, 0)
	return cfg
}

// particles swaps Box2D for collision-free point masses.
func particles() *Config {
	cfg := DefaultConfig()
	cfg.Engine.Kind = engine.KindPointMass
	cfg.Engine.Integrator = "rk4"
	return cfg
}

func ring(center dynamo.Vec2, radius float64, n int) []dynamo.Vec2 {
	out := make([]dynamo.Vec2, 0, n)
	for i := range n {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, center.Add(dynamo.FromAngle(angle).Scale(radius)))
	}
	return out
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
