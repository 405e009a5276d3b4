package world_test

import (
	"github.com/san-kum/gravsim/internal/dynamo"
)

type forceCall struct {
	id    dynamo.BodyID
	force dynamo.Vec2
}

// fakeEngine integrates unit-mass point bodies with explicit Euler and
// records every force it is given.
type fakeEngine struct {
	dt       float64
	next     dynamo.BodyID
	pos      map[dynamo.BodyID]dynamo.Vec2
	vel      map[dynamo.BodyID]dynamo.Vec2
	static   map[dynamo.BodyID]bool
	acc      map[dynamo.BodyID]dynamo.Vec2
	calls    []forceCall
	steps    int
	posReads map[dynamo.BodyID]int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		dt:       0.1,
		next:     1,
		pos:      make(map[dynamo.BodyID]dynamo.Vec2),
		vel:      make(map[dynamo.BodyID]dynamo.Vec2),
		static:   make(map[dynamo.BodyID]bool),
		acc:      make(map[dynamo.BodyID]dynamo.Vec2),
		posReads: make(map[dynamo.BodyID]int),
	}
}

func (e *fakeEngine) at(x, y float64) dynamo.BodyID {
	return e.CreateBody(dynamo.BodyDef{Position: dynamo.V(x, y)})
}

func (e *fakeEngine) CreateBody(def dynamo.BodyDef) dynamo.BodyID {
	id := e.next
	e.next++
	e.pos[id] = def.Position
	e.vel[id] = dynamo.Vec2{}
	e.static[id] = def.Kind == dynamo.Static
	return id
}

func (e *fakeEngine) DestroyBody(id dynamo.BodyID) bool {
	if _, ok := e.pos[id]; !ok {
		return false
	}
	delete(e.pos, id)
	delete(e.vel, id)
	delete(e.acc, id)
	return true
}

func (e *fakeEngine) ApplyForce(id dynamo.BodyID, f dynamo.Vec2) bool {
	if _, ok := e.pos[id]; !ok {
		return false
	}
	e.calls = append(e.calls, forceCall{id: id, force: f})
	e.acc[id] = e.acc[id].Add(f)
	return true
}

func (e *fakeEngine) ApplyImpulse(id dynamo.BodyID, j dynamo.Vec2) bool {
	if _, ok := e.pos[id]; !ok {
		return false
	}
	e.vel[id] = e.vel[id].Add(j)
	return true
}

func (e *fakeEngine) Step() {
	for id := range e.pos {
		if e.static[id] {
			continue
		}
		e.vel[id] = e.vel[id].Add(e.acc[id].Scale(e.dt))
		e.pos[id] = e.pos[id].Add(e.vel[id].Scale(e.dt))
	}
	clear(e.acc)
	e.steps++
}

func (e *fakeEngine) Position(id dynamo.BodyID) (dynamo.Vec2, bool) {
	p, ok := e.pos[id]
	if ok {
		e.posReads[id]++
	}
	return p, ok
}

func (e *fakeEngine) Angle(id dynamo.BodyID) (float64, bool) {
	_, ok := e.pos[id]
	return 0, ok
}

func (e *fakeEngine) Velocity(id dynamo.BodyID) (dynamo.Vec2, bool) {
	v, ok := e.vel[id]
	return v, ok
}

func (e *fakeEngine) Shape(id dynamo.BodyID) (dynamo.ShapeInfo, bool) {
	p, ok := e.pos[id]
	return dynamo.ShapeInfo{Kind: dynamo.ShapeCuboid, Center: p}, ok
}

// totalForce sums every force the engine received for id.
func (e *fakeEngine) totalForce(id dynamo.BodyID) dynamo.Vec2 {
	var sum dynamo.Vec2
	for _, c := range e.calls {
		if c.id == id {
			sum = sum.Add(c.force)
		}
	}
	return sum
}

type recordingVisual struct {
	pos      dynamo.Vec2
	rotation float64
	updates  int
}

func (v *recordingVisual) SetTransform(pos dynamo.Vec2, rotation float64) {
	v.pos = pos
	v.rotation = rotation
	v.updates++
}
