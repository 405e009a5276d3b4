// Package physics holds the force law shared by every gravity source.
//
// A [Law] maps the distance between a source and a receiver to a signed
// force magnitude, strength / d^Exponent. Negative strength attracts.
// Distances below Epsilon are handled by the law's [DegenerateMode]:
//
//	law := physics.InverseSquare()
//	f, ok := law.Force(sourcePos, receiverPos, -590000000.8)
//	if !ok {
//	    // coincident bodies, no force
//	}
//
// [Law] also implements [dynamo.Configurable] so front ends can tune it
// by name.
package physics
