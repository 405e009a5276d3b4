package integrators

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The seventh stage is evaluated at the
// fifth-order solution (FSAL) and only feeds the error estimate.
var (
	dpNodes = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}

	dpStages = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}

	// fifth minus fourth order weights
	dpError = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// RK45 is the Dormand-Prince embedded pair. Step uses a fixed dt and
// ignores the error estimate; StepAdaptive also suggests the next dt.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(sys System, x State, t, dt float64) State {
	next, _, _ := r.StepAdaptive(sys, x, t, dt, 1e-6)
	return next
}

// StepAdaptive advances x by dt and returns the step size the error
// estimate suggests for the next call. A non-finite result returns
// dynamo.ErrNonFinite along with the state.
func (r *RK45) StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error) {
	n := len(x)
	var k [7]State
	k[0] = sys.Derive(x, t)

	var stage State
	for s := 1; s < len(k); s++ {
		stage = make(State, n)
		for i := range n {
			acc := 0.0
			for j, a := range dpStages[s][:s] {
				acc += a * k[j][i]
			}
			stage[i] = x[i] + dt*acc
		}
		k[s] = sys.Derive(stage, t+dpNodes[s]*dt)
	}
	return r.finish(x, stage, k, dt, tol)
}

func (r *RK45) finish(x, next State, k [7]State, dt, tol float64) (State, float64, error) {
	if !next.IsValid() {
		return next, dt * r.minScale, dynamo.ErrNonFinite
	}

	worst := 0.0
	for i := range x {
		est := 0.0
		for s, e := range dpError {
			est += e * k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		worst = math.Max(worst, math.Abs(dt*est)/scale)
	}

	ratio := worst / tol
	switch {
	case ratio > 1:
		return next, dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25)), nil
	case ratio > 0:
		return next, dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), nil
	}
	return next, dt * r.maxScale, nil
}
