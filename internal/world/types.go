package world

import (
	"github.com/san-kum/gravsim/internal/arena"
	"github.com/san-kum/gravsim/internal/dynamo"
)

type Handle = arena.Handle

// Body is one registration. The engine owns the body itself; the visual
// is written to, never owned.
type Body struct {
	ID       dynamo.BodyID
	Role     dynamo.Role
	Strength float64 // zero uses the world default
	Visual   dynamo.Visual
	Name     string
}

// Sample is a receiver's state after a step.
type Sample struct {
	Handle   Handle
	ID       dynamo.BodyID
	Name     string
	Position dynamo.Vec2
	Velocity dynamo.Vec2
	Angle    float64
	Force    dynamo.Vec2 // summed gravity applied this step
}

// Frame summarizes one Step.
type Frame struct {
	Step       int
	Samples    []Sample
	Pairs      int
	Degenerate int
	Dropped    int
}

type Observer interface {
	OnStep(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

type Stats struct {
	Steps           int
	Pairs           int
	DegeneratePairs int
	DroppedBodies   int
}
