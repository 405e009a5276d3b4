// Package engine adapts the Box2D rigid-body engine to dynamo.Engine.
//
// Box2D works in meters and clamps per-step translation, so bodies are
// stored scaled down by PixelsPerMeter. Forces and impulses are given in
// pixel units against pixel-area mass (density * width * height in
// pixels), which is how the playground's strengths and impulses were
// tuned; the adapter converts them with a 1/ppm³ factor.
package engine

import (
	"github.com/bytearena/box2d"
	"github.com/kamstrup/intmap"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	DefaultDt                 = 1.0 / 60.0
	DefaultVelocityIterations = 8 // default 8 in testbed
	DefaultPositionIterations = 3 // default 3 in testbed
	DefaultPixelsPerMeter     = 30.0
)

type Config struct {
	Kind               string // box2d or pointmass
	Integrator         string // pointmass only
	Dt                 float64
	VelocityIterations int
	PositionIterations int
	PixelsPerMeter     float64
}

func DefaultConfig() Config {
	return Config{
		Kind:               KindBox2D,
		Integrator:         DefaultIntegrator,
		Dt:                 DefaultDt,
		VelocityIterations: DefaultVelocityIterations,
		PositionIterations: DefaultPositionIterations,
		PixelsPerMeter:     DefaultPixelsPerMeter,
	}
}

type entry struct {
	body  *box2d.B2Body
	def   dynamo.BodyDef
	index int
}

// Box2D is a zero-gravity Box2D world. Gravity comes from the registry.
type Box2D struct {
	cfg    Config
	world  *box2d.B2World
	bodies *intmap.Map[dynamo.BodyID, *entry]
	order  []dynamo.BodyID
	nextID dynamo.BodyID
	steps  int
}

func NewBox2D(cfg Config) *Box2D {
	if cfg.Dt <= 0 {
		cfg.Dt = DefaultDt
	}
	if cfg.VelocityIterations <= 0 {
		cfg.VelocityIterations = DefaultVelocityIterations
	}
	if cfg.PositionIterations <= 0 {
		cfg.PositionIterations = DefaultPositionIterations
	}
	if cfg.PixelsPerMeter <= 0 {
		cfg.PixelsPerMeter = 1
	}

	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	return &Box2D{
		cfg:    cfg,
		world:  &world,
		bodies: intmap.New[dynamo.BodyID, *entry](64),
		nextID: 1,
	}
}

func (e *Box2D) Config() Config { return e.cfg }

// Steps returns how many times the world has been advanced.
func (e *Box2D) Steps() int { return e.steps }

func (e *Box2D) toB2(v dynamo.Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X/e.cfg.PixelsPerMeter, v.Y/e.cfg.PixelsPerMeter)
}

func (e *Box2D) fromB2(v box2d.B2Vec2) dynamo.Vec2 {
	return dynamo.V(v.X*e.cfg.PixelsPerMeter, v.Y*e.cfg.PixelsPerMeter)
}

// forceScale converts pixel-unit forces and impulses to Box2D units.
func (e *Box2D) forceScale() float64 {
	ppm := e.cfg.PixelsPerMeter
	return 1 / (ppm * ppm * ppm)
}

func (e *Box2D) CreateBody(def dynamo.BodyDef) dynamo.BodyID {
	bodydef := box2d.MakeB2BodyDef()
	switch def.Kind {
	case dynamo.Static:
		bodydef.Type = box2d.B2BodyType.B2_staticBody
	case dynamo.Kinematic:
		bodydef.Type = box2d.B2BodyType.B2_kinematicBody
	default:
		bodydef.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bodydef.Position = e.toB2(def.Position)
	bodydef.AllowSleep = false

	body := e.world.CreateBody(&bodydef)

	fixturedef := box2d.MakeB2FixtureDef()
	fixturedef.Density = def.Density
	switch def.Shape {
	case dynamo.ShapeBall:
		shape := box2d.MakeB2CircleShape()
		shape.SetRadius(def.Radius / e.cfg.PixelsPerMeter)
		fixturedef.Shape = &shape
	default:
		shape := box2d.MakeB2PolygonShape()
		shape.SetAsBox(def.HalfExtents.X/e.cfg.PixelsPerMeter, def.HalfExtents.Y/e.cfg.PixelsPerMeter)
		fixturedef.Shape = &shape
	}
	body.CreateFixtureFromDef(&fixturedef)

	id := e.nextID
	e.nextID++
	body.SetUserData(id)

	e.bodies.Put(id, &entry{body: body, def: def, index: len(e.order)})
	e.order = append(e.order, id)
	return id
}

func (e *Box2D) DestroyBody(id dynamo.BodyID) bool {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	e.world.DestroyBody(ent.body)
	e.bodies.Del(id)

	e.order = append(e.order[:ent.index], e.order[ent.index+1:]...)
	for i := ent.index; i < len(e.order); i++ {
		if other, ok := e.bodies.Get(e.order[i]); ok {
			other.index = i
		}
	}
	return true
}

func (e *Box2D) ApplyForce(id dynamo.BodyID, force dynamo.Vec2) bool {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	f := force.Scale(e.forceScale())
	ent.body.ApplyForceToCenter(box2d.MakeB2Vec2(f.X, f.Y), true)
	return true
}

func (e *Box2D) ApplyImpulse(id dynamo.BodyID, impulse dynamo.Vec2) bool {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return false
	}
	j := impulse.Scale(e.forceScale())
	ent.body.ApplyLinearImpulse(box2d.MakeB2Vec2(j.X, j.Y), ent.body.GetWorldCenter(), true)
	return true
}

// Step advances the world by one fixed time step. Box2D clears the
// accumulated forces afterwards.
func (e *Box2D) Step() {
	e.world.Step(e.cfg.Dt, e.cfg.VelocityIterations, e.cfg.PositionIterations)
	e.steps++
}

func (e *Box2D) Position(id dynamo.BodyID) (dynamo.Vec2, bool) {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.Vec2{}, false
	}
	return e.fromB2(ent.body.GetPosition()), true
}

func (e *Box2D) Angle(id dynamo.BodyID) (float64, bool) {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return 0, false
	}
	return ent.body.GetAngle(), true
}

func (e *Box2D) Velocity(id dynamo.BodyID) (dynamo.Vec2, bool) {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.Vec2{}, false
	}
	return e.fromB2(ent.body.GetLinearVelocity()), true
}

func (e *Box2D) Shape(id dynamo.BodyID) (dynamo.ShapeInfo, bool) {
	ent, ok := e.bodies.Get(id)
	if !ok {
		return dynamo.ShapeInfo{}, false
	}

	info := dynamo.ShapeInfo{
		Kind:   dynamo.ShapeOther,
		Center: e.fromB2(ent.body.GetPosition()),
	}
	fixture := ent.body.GetFixtureList()
	if fixture == nil {
		return info, true
	}
	switch fixture.GetShape().GetType() {
	case box2d.B2Shape_Type.E_polygon:
		info.Kind = dynamo.ShapeCuboid
		info.HalfExtents = ent.def.HalfExtents
	case box2d.B2Shape_Type.E_circle:
		info.Kind = dynamo.ShapeBall
		info.Radius = fixture.GetShape().GetRadius() * e.cfg.PixelsPerMeter
	}
	return info, true
}

// Bodies returns live body ids in creation order.
func (e *Box2D) Bodies() []dynamo.BodyID {
	out := make([]dynamo.BodyID, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Box2D) Len() int { return e.bodies.Len() }
