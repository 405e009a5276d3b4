// Package world is the gravity-and-body registry.
//
// A World keeps two ordered collections of registered bodies: gravity
// sources and gravity receivers. Each Step applies the force of every
// source to every other receiver through the physics engine, advances
// the engine once, and pushes receiver transforms to their visuals.
//
// Registrations are addressed by generation-checked handles, so removing
// a body never leaves a dangling reference behind:
//
//	h := w.Register(world.Body{ID: id, Role: dynamo.RoleReceiver})
//	w.Step()
//	w.Remove(h)
//
// # Thread Safety
//
// World is NOT thread-safe. It is driven by a single host frame loop.
package world
