package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// DegenerateCount totals the source/receiver pairs that fell inside the
// law's epsilon.
type DegenerateCount struct {
	name  string
	count int
}

func NewDegenerateCount() *DegenerateCount {
	return &DegenerateCount{name: "degenerate_pairs"}
}

func (d *DegenerateCount) Name() string { return d.name }

func (d *DegenerateCount) Observe(f world.Frame) { d.count += f.Degenerate }

func (d *DegenerateCount) Value() float64 { return float64(d.count) }

func (d *DegenerateCount) Reset() { d.count = 0 }

// Bounds is an axis-aligned rectangle in scene pixels.
type Bounds struct {
	Min, Max dynamo.Vec2
}

func (b Bounds) Contains(p dynamo.Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Escaped is the fraction of receivers outside the bounds in the latest
// frame.
type Escaped struct {
	name    string
	bounds  Bounds
	outside int
	total   int
}

func NewEscaped(bounds Bounds) *Escaped {
	return &Escaped{name: "escaped", bounds: bounds}
}

func (e *Escaped) Name() string { return e.name }

func (e *Escaped) Observe(f world.Frame) {
	e.outside, e.total = 0, len(f.Samples)
	for _, s := range f.Samples {
		if !e.bounds.Contains(s.Position) {
			e.outside++
		}
	}
}

func (e *Escaped) Value() float64 {
	if e.total == 0 {
		return 0
	}
	return float64(e.outside) / float64(e.total)
}

func (e *Escaped) Reset() {
	e.outside = 0
	e.total = 0
}
