package engine

import (
	"math"

	"github.com/kamstrup/intmap"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
)

type particle struct {
	def   dynamo.BodyDef
	pos   dynamo.Vec2
	vel   dynamo.Vec2
	force dynamo.Vec2
	mass  float64
	index int
}

func (p *particle) movable() bool { return p.def.Kind == dynamo.Dynamic }

// PointMass integrates dynamic bodies as free particles in pixel units,
// without collisions or rotation. Mass is density times collider area in
// pixels, matching the units Box2D forces are tuned in. Applied forces are
// held constant across a step.
type PointMass struct {
	cfg    Config
	integ  integrators.Integrator
	bodies *intmap.Map[dynamo.BodyID, *particle]
	order  []dynamo.BodyID
	nextID dynamo.BodyID
	steps  int
	time   float64
}

func NewPointMass(cfg Config) (*PointMass, error) {
	if cfg.Dt <= 0 {
		cfg.Dt = DefaultDt
	}
	if cfg.Integrator == "" {
		cfg.Integrator = DefaultIntegrator
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	cfg.Kind = KindPointMass
	return &PointMass{
		cfg:    cfg,
		integ:  integ,
		bodies: intmap.New[dynamo.BodyID, *particle](64),
		nextID: 1,
	}, nil
}

func (e *PointMass) Config() Config { return e.cfg }

func (e *PointMass) Steps() int { return e.steps }

func area(def dynamo.BodyDef) float64 {
	if def.Shape == dynamo.ShapeBall {
		return math.Pi * def.Radius * def.Radius
	}
	return 4 * def.HalfExtents.X * def.HalfExtents.Y
}

func (e *PointMass) CreateBody(def dynamo.BodyDef) dynamo.BodyID {
	mass := def.Density * area(def)
	if mass <= 0 {
		mass = 1
	}

	id := e.nextID
	e.nextID++
	e.bodies.Put(id, &particle{def: def, pos: def.Position, mass: mass, index: len(e.order)})
	e.order = append(e.order, id)
	return id
}

func (e *PointMass) DestroyBody(id dynamo.BodyID) bool {
	p, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	e.bodies.Del(id)

	e.order = append(e.order[:p.index], e.order[p.index+1:]...)
	for i := p.index; i < len(e.order); i++ {
		if other, ok := e.bodies.Get(e.order[i]); ok {
			other.index = i
		}
	}
	return true
}

func (e *PointMass) ApplyForce(id dynamo.BodyID, force dynamo.Vec2) bool {
	p, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	if p.movable() {
		p.force = p.force.Add(force)
	}
	return true
}

func (e *PointMass) ApplyImpulse(id dynamo.BodyID, impulse dynamo.Vec2) bool {
	p, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	if p.movable() {
		p.vel = p.vel.Add(impulse.Scale(1 / p.mass))
	}
	return true
}

// Step advances every dynamic body by one time step and clears the
// accumulated forces. The state handed to the integrator is all positions
// followed by all velocities.
func (e *PointMass) Step() {
	moving := make([]*particle, 0, len(e.order))
	for _, id := range e.order {
		if p, ok := e.bodies.Get(id); ok && p.movable() {
			moving = append(moving, p)
		}
	}

	if n := len(moving); n > 0 {
		half := 2 * n
		x := make(integrators.State, 2*half)
		accel := make([]float64, half)
		for i, p := range moving {
			x[2*i], x[2*i+1] = p.pos.X, p.pos.Y
			x[half+2*i], x[half+2*i+1] = p.vel.X, p.vel.Y
			accel[2*i], accel[2*i+1] = p.force.X/p.mass, p.force.Y/p.mass
		}

		sys := integrators.SystemFunc(func(s integrators.State, t float64) integrators.State {
			dx := make(integrators.State, len(s))
			copy(dx[:half], s[half:])
			copy(dx[half:], accel)
			return dx
		})
		x = e.integ.Step(sys, x, e.time, e.cfg.Dt)

		for i, p := range moving {
			p.pos = dynamo.V(x[2*i], x[2*i+1])
			p.vel = dynamo.V(x[half+2*i], x[half+2*i+1])
			p.force = dynamo.Vec2{}
		}
	}

	e.time += e.cfg.Dt
	e.steps++
}

func (e *PointMass) Position(id dynamo.BodyID) (dynamo.Vec2, bool) {
	p, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.Vec2{}, false
	}
	return p.pos, true
}

// Angle is always zero; particles do not rotate.
func (e *PointMass) Angle(id dynamo.BodyID) (float64, bool) {
	_, ok := e.bodies.Get(id)
	return 0, ok
}

func (e *PointMass) Velocity(id dynamo.BodyID) (dynamo.Vec2, bool) {
	p, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.Vec2{}, false
	}
	return p.vel, true
}

func (e *PointMass) Shape(id dynamo.BodyID) (dynamo.ShapeInfo, bool) {
	p, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.ShapeInfo{}, false
	}
	info := dynamo.ShapeInfo{Kind: p.def.Shape, Center: p.pos}
	switch p.def.Shape {
	case dynamo.ShapeBall:
		info.Radius = p.def.Radius
	case dynamo.ShapeCuboid:
		info.HalfExtents = p.def.HalfExtents
	}
	return info, true
}

// Bodies returns live body ids in creation order.
func (e *PointMass) Bodies() []dynamo.BodyID {
	out := make([]dynamo.BodyID, len(e.order))
	copy(out, e.order)
	return out
}

func (e *PointMass) Len() int { return e.bodies.Len() }
