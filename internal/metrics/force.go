package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/world"
)

// MaxForce is the largest summed gravity any receiver has felt.
type MaxForce struct {
	name string
	max  float64
}

func NewMaxForce() *MaxForce {
	return &MaxForce{name: "max_force"}
}

func (m *MaxForce) Name() string { return m.name }

func (m *MaxForce) Observe(f world.Frame) {
	for _, s := range f.Samples {
		m.max = math.Max(m.max, s.Force.Len())
	}
}

func (m *MaxForce) Value() float64 { return m.max }

func (m *MaxForce) Reset() { m.max = 0 }

// MinSeparation is the closest any two receivers have come.
type MinSeparation struct {
	name string
	min  float64
	seen bool
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation"}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(f world.Frame) {
	for i := range f.Samples {
		for j := i + 1; j < len(f.Samples); j++ {
			if f.Samples[i].ID == f.Samples[j].ID {
				continue
			}
			d := f.Samples[i].Position.Dist(f.Samples[j].Position)
			if !m.seen || d < m.min {
				m.min = d
				m.seen = true
			}
		}
	}
}

// Value is zero until two distinct receivers have been observed.
func (m *MinSeparation) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() {
	m.min = 0
	m.seen = false
}
