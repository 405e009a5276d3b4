package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/world"
)

// Runner drives a playground without a display.
type Runner struct {
	cfg      *config.Config
	preset   string
	logger   *log.Logger
	recorder *metrics.Recorder
}

type Option func(*Runner)

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithPreset(name string) Option {
	return func(r *Runner) { r.preset = name }
}

func WithRecorder(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.recorder == nil {
		r.recorder = metrics.Default(metrics.Bounds{
			Max: dynamo.V(cfg.Scene.Width, cfg.Scene.Height),
		})
	}
	return r
}

func (r *Runner) validate() error {
	if r.cfg.Run.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", r.cfg.Run.Frames)
	}
	if r.cfg.Run.SampleEvery < 1 {
		return fmt.Errorf("sample_every must be at least 1, got %d", r.cfg.Run.SampleEvery)
	}
	return nil
}

// Run plays Run.Frames frames, sampling receiver positions every
// Run.SampleEvery frames. On cancellation the partial result is
// returned with the context error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	frames := r.cfg.Run.Frames
	every := r.cfg.Run.SampleEvery
	result := &Result{
		Preset:  r.preset,
		Points:  make([]Point, 0, frames/every*len(r.cfg.Scene.Bunnies)),
		Energy:  make([]float64, 0, frames),
		Metrics: make(map[string]float64),
	}

	r.recorder.Reset()
	ke, _ := r.recorder.Get("kinetic_energy")

	err := r.RunWithCallback(ctx, func(i int, f world.Frame) bool {
		if ke != nil {
			result.Energy = append(result.Energy, ke.Value())
		}
		if i%every == 0 {
			for _, s := range f.Samples {
				result.Points = append(result.Points, Point{Frame: i, Body: s.Name, X: s.Position.X, Y: s.Position.Y})
			}
		}
		result.Frames++
		return true
	}, func(pg *scene.Playground) {
		result.Steps = pg.Engine().Steps()
		result.Stats = pg.World().Stats()
	})

	result.Metrics = r.recorder.Values()
	r.logger.Info("run finished", "preset", r.preset, "frames", result.Frames, "steps", result.Steps, "dropped", result.Stats.DroppedBodies)
	return result, err
}

// RunWithCallback builds a fresh playground and calls fn after every
// frame until fn returns false, the frames run out, or ctx is done.
// done, when set, sees the playground before it is closed.
func (r *Runner) RunWithCallback(ctx context.Context, fn func(frame int, f world.Frame) bool, done func(*scene.Playground)) error {
	if err := r.validate(); err != nil {
		return err
	}

	pg, err := scene.New(r.cfg,
		scene.WithLogger(r.logger.WithPrefix("scene")),
		scene.WithObserver(r.recorder),
	)
	if err != nil {
		return err
	}
	defer pg.Close()
	if done != nil {
		defer done(pg)
	}

	for i := range r.cfg.Run.Frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f := pg.Frame(nil)
		if !fn(i, f) {
			return nil
		}
	}
	return nil
}
