// Package integrators advances first-order systems by one fixed step.
//
// Second-order integrators (Verlet, Leapfrog) expect the state laid out as
// positions followed by velocities, with the derivative's second half
// holding accelerations.
package integrators

import (
	"fmt"
	"math"
	"sort"
)

type State []float64

func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
}

// SystemFunc adapts a function to System.
type SystemFunc func(x State, t float64) State

func (f SystemFunc) Derive(x State, t float64) State { return f(x, t) }

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

var registry = map[string]func() Integrator{
	"euler":    func() Integrator { return NewEuler() },
	"verlet":   func() Integrator { return NewVerlet() },
	"leapfrog": func() Integrator { return NewLeapfrog() },
	"rk4":      func() Integrator { return NewRK4() },
	"rk45":     func() Integrator { return NewRK45() },
}

// New returns a fresh integrator by name.
func New(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
