package integrators

// axpy returns x + h*dx as a fresh state.
func axpy(x State, h float64, dx State) State {
	out := make(State, len(x))
	for i, xi := range x {
		out[i] = xi + h*dx[i]
	}
	return out
}

// Euler is the explicit first-order method. It drifts on orbits and is kept
// as the baseline the other schemes are measured against.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (*Euler) Step(sys System, x State, t, dt float64) State {
	return axpy(x, dt, sys.Derive(x, t))
}
