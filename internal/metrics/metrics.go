package metrics

import (
	"github.com/san-kum/gravsim/internal/world"
)

type Metric interface {
	Name() string
	Observe(f world.Frame)
	Value() float64
	Reset()
}

// Recorder feeds every world frame to a set of metrics.
type Recorder struct {
	metrics []Metric
}

func NewRecorder(ms ...Metric) *Recorder {
	return &Recorder{metrics: ms}
}

// Default returns the metrics a headless run records.
func Default(bounds Bounds) *Recorder {
	return NewRecorder(
		NewKineticEnergy(),
		NewMaxForce(),
		NewMinSeparation(),
		NewDegenerateCount(),
		NewEscaped(bounds),
	)
}

func (r *Recorder) OnStep(f world.Frame) {
	for _, m := range r.metrics {
		m.Observe(f)
	}
}

func (r *Recorder) Metrics() []Metric { return r.metrics }

func (r *Recorder) Get(name string) (Metric, bool) {
	for _, m := range r.metrics {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

func (r *Recorder) Values() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
}
