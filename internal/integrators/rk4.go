package integrators

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (*RK4) Step(sys System, x State, t, dt float64) State {
	half := dt / 2
	k1 := sys.Derive(x, t)
	k2 := sys.Derive(axpy(x, half, k1), t+half)
	k3 := sys.Derive(axpy(x, half, k2), t+half)
	k4 := sys.Derive(axpy(x, dt, k3), t+dt)

	out := make(State, len(x))
	for i := range out {
		out[i] = x[i] + dt/6*(k1[i]+2*(k2[i]+k3[i])+k4[i])
	}
	return out
}
