package sim

import (
	"github.com/san-kum/gravsim/internal/world"
)

// Point is one sampled receiver position.
type Point struct {
	Frame int
	Body  string
	X, Y  float64
}

type Result struct {
	Preset  string
	Frames  int
	Steps   int
	Points  []Point
	Energy  []float64 // kinetic energy per frame
	Metrics map[string]float64
	Stats   world.Stats
}

// Bodies returns the distinct body names in first-seen order.
func (r *Result) Bodies() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range r.Points {
		if !seen[p.Body] {
			seen[p.Body] = true
			out = append(out, p.Body)
		}
	}
	return out
}

// Track returns the sampled points of one body.
func (r *Result) Track(body string) []Point {
	out := make([]Point, 0)
	for _, p := range r.Points {
		if p.Body == body {
			out = append(out, p)
		}
	}
	return out
}
