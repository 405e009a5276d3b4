package engine

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	KindBox2D     = "box2d"
	KindPointMass = "pointmass"

	DefaultIntegrator = "leapfrog"
)

// Backend is a dynamo.Engine that can also report on itself.
type Backend interface {
	dynamo.Engine
	Steps() int
	Bodies() []dynamo.BodyID
	Len() int
}

var (
	_ Backend = (*Box2D)(nil)
	_ Backend = (*PointMass)(nil)
)

// New builds the engine named by cfg.Kind. An empty kind means Box2D.
func New(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case "", KindBox2D:
		return NewBox2D(cfg), nil
	case KindPointMass:
		return NewPointMass(cfg)
	default:
		return nil, fmt.Errorf("unknown engine: %s (available: %v)", cfg.Kind, Kinds())
	}
}

func Kinds() []string {
	return []string{KindBox2D, KindPointMass}
}
