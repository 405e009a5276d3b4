package integrators

// split views a positions-then-velocities state.
func split(x State) (pos, vel State) {
	n := len(x) / 2
	return x[:n], x[n:]
}

// accel evaluates the system at x and returns only the acceleration half.
func accel(sys System, x State, t float64) State {
	_, a := split(sys.Derive(x, t))
	return a
}

// Verlet is velocity Verlet: a full position update from the current
// acceleration, then the velocity from the mean of old and new ones.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

func (*Verlet) Step(sys System, x State, t, dt float64) State {
	pos, vel := split(x)
	a0 := accel(sys, x, t)

	out := x.Clone()
	npos, nvel := split(out)
	for i := range pos {
		npos[i] = pos[i] + dt*vel[i] + dt*dt/2*a0[i]
	}

	a1 := accel(sys, out, t+dt)
	for i := range vel {
		nvel[i] = vel[i] + dt/2*(a0[i]+a1[i])
	}
	return out
}

// Leapfrog is kick-drift-kick: half a velocity kick, a full drift at the
// midpoint velocity, then the second half kick.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog { return &Leapfrog{} }

func (*Leapfrog) Step(sys System, x State, t, dt float64) State {
	out := x.Clone()
	pos, vel := split(out)

	for i, a := range accel(sys, x, t) {
		vel[i] += dt / 2 * a
	}
	for i := range pos {
		pos[i] += dt * vel[i]
	}
	for i, a := range accel(sys, out, t+dt) {
		vel[i] += dt / 2 * a
	}
	return out
}
