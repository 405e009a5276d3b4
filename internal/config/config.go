package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth            = 800.0
	DefaultHeight           = 800.0
	DefaultSunStrength      = -590000000.8
	DefaultSunDensity       = 1000.0
	DefaultHalfExtent       = 12.5
	DefaultBunnyDensity     = 2.0
	DefaultStepsPerFrame    = 1
	DefaultFrames           = 600
	DefaultSampleEvery      = 1
	DefaultFPS              = 60
	DefaultImpulseX         = 35000.0
	DefaultImpulseY         = 17000.0
	DefaultPlayerX          = 100.0
	DefaultPlayerY          = 100.0
	DefaultMaxStepsPerFrame = 64
)

var (
	ErrInvalid      = errors.New("config: invalid configuration")
	ErrUnknownParam = errors.New("config: unknown parameter")
)

type Config struct {
	Gravity GravityConfig `yaml:"gravity"`
	Engine  EngineConfig  `yaml:"engine"`
	Scene   SceneConfig   `yaml:"scene"`
	Run     RunConfig     `yaml:"run"`
}

// GravityConfig is the one law every source in a scene shares.
type GravityConfig struct {
	Strength   float64 `yaml:"strength" json:"strength"`
	Exponent   float64 `yaml:"exponent" json:"exponent"`
	Epsilon    float64 `yaml:"epsilon" json:"epsilon"`
	Degenerate string  `yaml:"degenerate" json:"degenerate"`
}

// EngineConfig selects and tunes the physics engine. Iterations and
// PixelsPerMeter only apply to box2d; Integrator only to pointmass.
type EngineConfig struct {
	Kind               string  `yaml:"kind"`
	Integrator         string  `yaml:"integrator"`
	Dt                 float64 `yaml:"dt"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	PixelsPerMeter     float64 `yaml:"pixels_per_meter"`
}

type SceneConfig struct {
	Width           float64       `yaml:"width"`
	Height          float64       `yaml:"height"`
	SunDensity      float64       `yaml:"sun_density"`
	SunHalfExtent   float64       `yaml:"sun_half_extent"`
	Bunnies         []dynamo.Vec2 `yaml:"bunnies"`
	BunnyDensity    float64       `yaml:"bunny_density"`
	BunnyHalfExtent float64       `yaml:"bunny_half_extent"`
	BunnyStrength   float64       `yaml:"bunny_strength"`
	Impulse         dynamo.Vec2   `yaml:"impulse"`
	Player          dynamo.Vec2   `yaml:"player"`
	StepsPerFrame   int           `yaml:"steps_per_frame"`
}

type RunConfig struct {
	Frames      int `yaml:"frames"`
	SampleEvery int `yaml:"sample_every"`
	FPS         int `yaml:"fps"`
}

// DefaultBunnies are the playground's starting positions.
func DefaultBunnies() []dynamo.Vec2 {
	return []dynamo.Vec2{
		{X: 200, Y: 600},
		{X: 500, Y: 250},
		{X: 100, Y: 550},
		{X: 800, Y: 800},
		{X: -100, Y: -200},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Gravity: GravityConfig{
			Strength:   DefaultSunStrength,
			Exponent:   physics.DefaultExponent,
			Epsilon:    physics.DefaultEpsilon,
			Degenerate: physics.DegenerateClamp.String(),
		},
		Engine: EngineConfig{
			Kind:               engine.KindBox2D,
			Integrator:         engine.DefaultIntegrator,
			Dt:                 engine.DefaultDt,
			VelocityIterations: engine.DefaultVelocityIterations,
			PositionIterations: engine.DefaultPositionIterations,
			PixelsPerMeter:     engine.DefaultPixelsPerMeter,
		},
		Scene: SceneConfig{
			Width:           DefaultWidth,
			Height:          DefaultHeight,
			SunDensity:      DefaultSunDensity,
			SunHalfExtent:   DefaultHalfExtent,
			Bunnies:         DefaultBunnies(),
			BunnyDensity:    DefaultBunnyDensity,
			BunnyHalfExtent: DefaultHalfExtent,
			Impulse:         dynamo.V(DefaultImpulseX, DefaultImpulseY),
			Player:          dynamo.V(DefaultPlayerX, DefaultPlayerY),
			StepsPerFrame:   DefaultStepsPerFrame,
		},
		Run: RunConfig{
			Frames:      DefaultFrames,
			SampleEvery: DefaultSampleEvery,
			FPS:         DefaultFPS,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Scene.Bunnies = append([]dynamo.Vec2(nil), c.Scene.Bunnies...)
	return &out
}

func (c *Config) Validate() error {
	if _, err := c.Gravity.Law(); err != nil {
		return fmt.Errorf("%w: gravity: %w", ErrInvalid, err)
	}
	if !finite(c.Gravity.Strength) {
		return fmt.Errorf("%w: gravity.strength must be finite", ErrInvalid)
	}
	if c.Engine.Dt <= 0 || !finite(c.Engine.Dt) {
		return fmt.Errorf("%w: engine.dt must be positive", ErrInvalid)
	}
	switch c.Engine.Kind {
	case "", engine.KindBox2D:
	case engine.KindPointMass:
		if c.Engine.Integrator != "" {
			if _, err := integrators.New(c.Engine.Integrator); err != nil {
				return fmt.Errorf("%w: engine: %w", ErrInvalid, err)
			}
		}
	default:
		return fmt.Errorf("%w: engine.kind must be one of %v, got %q", ErrInvalid, engine.Kinds(), c.Engine.Kind)
	}
	if c.Engine.PixelsPerMeter <= 0 {
		return fmt.Errorf("%w: engine.pixels_per_meter must be positive", ErrInvalid)
	}
	if c.Scene.Width <= 0 || c.Scene.Height <= 0 {
		return fmt.Errorf("%w: scene size must be positive, got %gx%g", ErrInvalid, c.Scene.Width, c.Scene.Height)
	}
	if c.Scene.SunHalfExtent <= 0 || c.Scene.BunnyHalfExtent <= 0 {
		return fmt.Errorf("%w: half extents must be positive", ErrInvalid)
	}
	if c.Scene.SunDensity <= 0 || c.Scene.BunnyDensity <= 0 {
		return fmt.Errorf("%w: densities must be positive", ErrInvalid)
	}
	if !c.Scene.Impulse.IsFinite() {
		return fmt.Errorf("%w: scene.impulse must be finite", ErrInvalid)
	}
	for i, b := range c.Scene.Bunnies {
		if !b.IsFinite() {
			return fmt.Errorf("%w: scene.bunnies[%d] must be finite", ErrInvalid, i)
		}
	}
	if c.Scene.StepsPerFrame < 1 || c.Scene.StepsPerFrame > DefaultMaxStepsPerFrame {
		return fmt.Errorf("%w: scene.steps_per_frame must be in [1, %d], got %d", ErrInvalid, DefaultMaxStepsPerFrame, c.Scene.StepsPerFrame)
	}
	if c.Run.Frames < 0 || c.Run.SampleEvery < 1 || c.Run.FPS < 1 {
		return fmt.Errorf("%w: run.frames, run.sample_every and run.fps out of range", ErrInvalid)
	}
	return nil
}

// Law builds the force law. Zero exponent or epsilon, as left by keys
// omitted from a YAML file, fall back to the inverse-square defaults.
func (g GravityConfig) Law() (physics.Law, error) {
	law := physics.InverseSquare()
	if g.Exponent != 0 {
		law.Exponent = g.Exponent
	}
	if g.Epsilon != 0 {
		law.Epsilon = g.Epsilon
	}
	mode, err := physics.ParseDegenerateMode(g.Degenerate)
	if err != nil {
		return law, err
	}
	law.Degenerate = mode
	if err := law.Validate(); err != nil {
		return law, err
	}
	return law, nil
}

func (e EngineConfig) ToEngine() engine.Config {
	return engine.Config{
		Kind:               e.Kind,
		Integrator:         e.Integrator,
		Dt:                 e.Dt,
		VelocityIterations: e.VelocityIterations,
		PositionIterations: e.PositionIterations,
		PixelsPerMeter:     e.PixelsPerMeter,
	}
}

// Params lists the tunable values for display and storage.
func (c *Config) Params() map[string]float64 {
	return map[string]float64{
		"strength":        c.Gravity.Strength,
		"exponent":        c.Gravity.Exponent,
		"epsilon":         c.Gravity.Epsilon,
		"bunny_strength":  c.Scene.BunnyStrength,
		"impulse_x":       c.Scene.Impulse.X,
		"impulse_y":       c.Scene.Impulse.Y,
		"steps_per_frame": float64(c.Scene.StepsPerFrame),
		"dt":              c.Engine.Dt,
	}
}

// SetParam sets one of the values listed by Params. Exponent and epsilon
// must be positive and finite.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "exponent", "epsilon":
		if !(value > 0) || !finite(value) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, name, value)
		}
	}
	switch name {
	case "strength":
		c.Gravity.Strength = value
	case "exponent":
		c.Gravity.Exponent = value
	case "epsilon":
		c.Gravity.Epsilon = value
	case "bunny_strength":
		c.Scene.BunnyStrength = value
	case "impulse_x":
		c.Scene.Impulse.X = value
	case "impulse_y":
		c.Scene.Impulse.Y = value
	case "steps_per_frame":
		c.Scene.StepsPerFrame = int(value)
	case "dt":
		c.Engine.Dt = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
