package world

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/arena"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const DefaultStrength = -1000.0

type World struct {
	engine          dynamo.Engine
	law             physics.Law
	defaultStrength float64
	logger          *log.Logger

	bodies    *arena.Arena[Body]
	sources   []Handle
	receivers []Handle

	stepping bool
	pending  map[Handle]struct{}
	order    []Handle

	observers []Observer
	stats     Stats

	positions map[dynamo.BodyID]dynamo.Vec2
	forces    []dynamo.Vec2
}

type Option func(*World)

func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithDefaultStrength(s float64) Option {
	return func(w *World) { w.defaultStrength = s }
}

func New(engine dynamo.Engine, law physics.Law, opts ...Option) *World {
	w := &World{
		engine:          engine,
		law:             law,
		defaultStrength: DefaultStrength,
		logger:          log.New(io.Discard),
		bodies:          arena.New[Body](16),
		pending:         make(map[Handle]struct{}),
		observers:       make([]Observer, 0),
		positions:       make(map[dynamo.BodyID]dynamo.Vec2),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

func (w *World) Engine() dynamo.Engine { return w.engine }

// Law returns the live force law; changes apply from the next Step.
func (w *World) Law() *physics.Law { return &w.law }

func (w *World) DefaultStrength() float64 { return w.defaultStrength }

func (w *World) SetDefaultStrength(s float64) { w.defaultStrength = s }

func (w *World) Stats() Stats { return w.stats }

// Register adds b to the sources and/or receivers according to its role.
// There is no uniqueness check: registering the same engine body twice
// yields two independent registrations.
func (w *World) Register(b Body) Handle {
	h := w.bodies.Insert(b)
	if b.Role.IsSource() {
		w.sources = append(w.sources, h)
	}
	if b.Role.IsReceiver() {
		w.receivers = append(w.receivers, h)
	}
	w.logger.Debug("registered body", "handle", uint64(h), "body", b.ID, "role", b.Role, "name", b.Name)
	return h
}

// Remove deregisters h. During a Step the removal is deferred until the
// step has finished, so a step always sees either the whole body or none
// of it.
func (w *World) Remove(h Handle) error {
	if !w.bodies.Contains(h) {
		return arena.ErrStaleHandle
	}
	if w.stepping {
		if _, queued := w.pending[h]; queued {
			return arena.ErrStaleHandle
		}
		w.pending[h] = struct{}{}
		w.order = append(w.order, h)
		return nil
	}
	return w.remove(h)
}

func (w *World) remove(h Handle) error {
	b, ok := w.bodies.Get(h)
	if !ok {
		return arena.ErrStaleHandle
	}
	if b.Role.IsSource() {
		w.sources = without(w.sources, h)
	}
	if b.Role.IsReceiver() {
		w.receivers = without(w.receivers, h)
	}
	w.logger.Debug("removed body", "handle", uint64(h), "body", b.ID, "name", b.Name)
	return w.bodies.Remove(h)
}

func without(hs []Handle, h Handle) []Handle {
	for i, x := range hs {
		if x == h {
			return append(hs[:i], hs[i+1:]...)
		}
	}
	return hs
}

func (w *World) flush() {
	for _, h := range w.order {
		_ = w.remove(h)
	}
	w.order = w.order[:0]
	clear(w.pending)
}

func (w *World) Get(h Handle) (Body, bool) { return w.bodies.Get(h) }

func (w *World) Len() int { return w.bodies.Len() }

// Sources returns source handles in registration order.
func (w *World) Sources() []Handle { return append([]Handle(nil), w.sources...) }

// Receivers returns receiver handles in registration order.
func (w *World) Receivers() []Handle { return append([]Handle(nil), w.receivers...) }

// Position reads a registered body's current position from the engine.
func (w *World) Position(h Handle) (dynamo.Vec2, bool) {
	b, ok := w.bodies.Get(h)
	if !ok {
		return dynamo.Vec2{}, false
	}
	return w.engine.Position(b.ID)
}

func (w *World) strength(b Body) float64 {
	if b.Strength != 0 {
		return b.Strength
	}
	return w.defaultStrength
}

// position reads each engine body at most once per step. Bodies whose
// engine handle is gone are queued for removal.
func (w *World) position(h Handle, b Body, frame *Frame) (dynamo.Vec2, bool) {
	if p, ok := w.positions[b.ID]; ok {
		return p, true
	}
	p, ok := w.engine.Position(b.ID)
	if !ok || !p.IsFinite() {
		if _, queued := w.pending[h]; !queued {
			w.logger.Warn("dropping body without a live engine handle", "handle", uint64(h), "body", b.ID, "name", b.Name)
			w.pending[h] = struct{}{}
			w.order = append(w.order, h)
			frame.Dropped++
		}
		return dynamo.Vec2{}, false
	}
	w.positions[b.ID] = p
	return p, true
}

// Step runs one frame: source forces on receivers, one engine step,
// then receiver transforms pushed to their visuals.
func (w *World) Step() Frame {
	w.stepping = true
	defer func() {
		w.stepping = false
		w.flush()
	}()

	frame := Frame{Step: w.stats.Steps}
	clear(w.positions)

	if cap(w.forces) < len(w.receivers) {
		w.forces = make([]dynamo.Vec2, len(w.receivers))
	}
	forces := w.forces[:len(w.receivers)]
	clear(forces)

	for _, sh := range w.sources {
		src, ok := w.bodies.Get(sh)
		if !ok {
			continue
		}
		ps, ok := w.position(sh, src, &frame)
		if !ok {
			continue
		}
		strength := w.strength(src)

		for i, rh := range w.receivers {
			rcv, ok := w.bodies.Get(rh)
			if !ok || rcv.ID == src.ID {
				continue
			}
			pr, ok := w.position(rh, rcv, &frame)
			if !ok {
				continue
			}

			f, ok := w.law.Force(ps, pr, strength)
			frame.Pairs++
			if !ok {
				frame.Degenerate++
			}
			forces[i] = forces[i].Add(f)
		}
	}

	for i, rh := range w.receivers {
		if forces[i].IsZero() {
			continue
		}
		if _, dropped := w.pending[rh]; dropped {
			continue
		}
		rcv, _ := w.bodies.Get(rh)
		w.engine.ApplyForce(rcv.ID, forces[i])
	}

	w.engine.Step()

	frame.Samples = make([]Sample, 0, len(w.receivers))
	for i, rh := range w.receivers {
		if _, dropped := w.pending[rh]; dropped {
			continue
		}
		rcv, ok := w.bodies.Get(rh)
		if !ok {
			continue
		}
		pos, ok := w.engine.Position(rcv.ID)
		if !ok {
			continue
		}
		angle, _ := w.engine.Angle(rcv.ID)
		vel, _ := w.engine.Velocity(rcv.ID)
		if rcv.Visual != nil {
			rcv.Visual.SetTransform(pos, angle)
		}
		frame.Samples = append(frame.Samples, Sample{
			Handle:   rh,
			ID:       rcv.ID,
			Name:     rcv.Name,
			Position: pos,
			Velocity: vel,
			Angle:    angle,
			Force:    forces[i],
		})
	}

	w.stats.Steps++
	w.stats.Pairs += frame.Pairs
	w.stats.DegeneratePairs += frame.Degenerate
	w.stats.DroppedBodies += frame.Dropped
	if frame.Degenerate > 0 {
		w.logger.Debug("degenerate pairs", "step", frame.Step, "count", frame.Degenerate)
	}

	for _, o := range w.observers {
		o.OnStep(frame)
	}
	return frame
}

// Close drops every registration. Engine bodies and visuals are left to
// their owners.
func (w *World) Close() {
	w.bodies.Clear()
	w.sources = w.sources[:0]
	w.receivers = w.receivers[:0]
	w.order = w.order[:0]
	clear(w.pending)
	w.observers = w.observers[:0]
}
