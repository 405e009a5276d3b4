// Package dynamo provides the shared primitives of the gravity playground.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Vec2]: 2D vector used for positions, forces and impulses
//   - [Engine]: the external rigid-body physics engine
//   - [Visual]: a node of the external rendering layer
//   - [BodyDef], [ShapeInfo]: engine body creation and debug queries
//   - [Role]: whether a body emits gravity, receives it, or both
//
// # Example
//
//	eng, err := engine.New(cfg.Engine.ToEngine())
//	id := eng.CreateBody(dynamo.BodyDef{Kind: dynamo.Dynamic, Position: dynamo.V(100, 0)})
//	w := world.New(eng, law)
//	w.Register(world.Body{ID: id, Role: dynamo.RoleReceiver})
//
// # Thread Safety
//
// Engines and worlds are NOT thread-safe. The host frame loop owns them.
package dynamo
