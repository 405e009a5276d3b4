// Package scene builds the gravity playground: a static sun that pulls
// on a handful of bunnies, plus a player sprite with an aiming stick.
//
// The Stage is a headless display tree. Its nodes implement dynamo.Visual,
// so the world pushes body transforms straight into them; renderers read
// the nodes back out.
//
// # Thread Safety
//
// A Playground is driven by one host loop. None of its methods are safe
// for concurrent use.
package scene
