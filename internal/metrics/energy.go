package metrics

import (
	"github.com/san-kum/gravsim/internal/world"
)

// KineticEnergy is the receivers' kinetic energy per unit mass,
// sum of v²/2, as of the latest frame.
type KineticEnergy struct {
	name    string
	current float64
	peak    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f world.Frame) {
	var e float64
	for _, s := range f.Samples {
		e += 0.5 * s.Velocity.LenSq()
	}
	k.current = e
	k.peak = max(k.peak, e)
	k.samples++
}

func (k *KineticEnergy) Value() float64 { return k.current }

func (k *KineticEnergy) Peak() float64 { return k.peak }

func (k *KineticEnergy) Reset() {
	k.current = 0
	k.peak = 0
	k.samples = 0
}
