package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	DefaultExponent = 2.0
	DefaultEpsilon  = 1.0
)

// DegenerateMode selects what happens when a receiver is closer to a
// source than the law's epsilon.
type DegenerateMode uint8

const (
	// DegenerateClamp evaluates the magnitude at epsilon. Coincident
	// pairs have no direction and get no force.
	DegenerateClamp DegenerateMode = iota
	// DegenerateSkip applies no force to pairs closer than epsilon.
	DegenerateSkip
)

func (m DegenerateMode) String() string {
	if m == DegenerateSkip {
		return "skip"
	}
	return "clamp"
}

func ParseDegenerateMode(s string) (DegenerateMode, error) {
	switch s {
	case "", "clamp":
		return DegenerateClamp, nil
	case "skip":
		return DegenerateSkip, nil
	default:
		return DegenerateClamp, fmt.Errorf("unknown degenerate mode: %s", s)
	}
}

// Law is the single gravity law every source uses:
//
//	F = unit(receiver - source) * strength / max(d, Epsilon)^Exponent
//
// Negative strength pulls receivers toward the source, positive strength
// pushes them away.
type Law struct {
	Exponent   float64
	Epsilon    float64
	Degenerate DegenerateMode
}

// InverseSquare returns the default law.
func InverseSquare() Law {
	return Law{
		Exponent:   DefaultExponent,
		Epsilon:    DefaultEpsilon,
		Degenerate: DegenerateClamp,
	}
}

func (l Law) Validate() error {
	if math.IsNaN(l.Exponent) || l.Exponent <= 0 {
		return &dynamo.ParamError{Name: "exponent", Value: l.Exponent, Want: "positive"}
	}
	if math.IsNaN(l.Epsilon) || math.IsInf(l.Epsilon, 0) || l.Epsilon <= 0 {
		return &dynamo.ParamError{Name: "epsilon", Value: l.Epsilon, Want: "positive and finite"}
	}
	return nil
}

// Magnitude returns the signed force magnitude at distance d, with d
// clamped to Epsilon.
func (l Law) Magnitude(d, strength float64) float64 {
	d = math.Max(d, l.Epsilon)
	if l.Exponent == 2 {
		return strength / (d * d)
	}
	return strength / math.Pow(d, l.Exponent)
}

// Force returns the force the source exerts on the receiver. The second
// result is false when the pair was degenerate (closer than Epsilon);
// the returned force is always finite.
func (l Law) Force(source, receiver dynamo.Vec2, strength float64) (dynamo.Vec2, bool) {
	u, d := receiver.Sub(source).Normalize()

	if d < l.Epsilon {
		if d == 0 || l.Degenerate == DegenerateSkip {
			return dynamo.Vec2{}, false
		}
		return u.Scale(l.Magnitude(d, strength)), false
	}

	f := u.Scale(l.Magnitude(d, strength))
	if !f.IsFinite() {
		return dynamo.Vec2{}, false
	}
	return f, true
}

func (l *Law) GetParams() map[string]float64 {
	return map[string]float64{
		"exponent": l.Exponent,
		"epsilon":  l.Epsilon,
	}
}

func (l *Law) SetParam(name string, value float64) error {
	next := *l
	switch name {
	case "exponent":
		next.Exponent = value
	case "epsilon":
		next.Epsilon = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*l = next
	return nil
}
