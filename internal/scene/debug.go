package scene

import (
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Rect is a collider outline centered on its body.
type Rect struct {
	Body  dynamo.BodyID `json:"body"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	W     float64       `json:"w"`
	H     float64       `json:"h"`
	Angle float64       `json:"angle"`
}

// DebugShapes outlines every cuboid collider in the engine. Other shape
// kinds have no outline yet and are logged.
func (p *Playground) DebugShapes() []Rect {
	ids := p.engine.Bodies()
	out := make([]Rect, 0, len(ids))
	for _, id := range ids {
		shape, ok := p.engine.Shape(id)
		if !ok {
			continue
		}
		if shape.Kind != dynamo.ShapeCuboid {
			p.logger.Warn("debug outline not supported", "body", id, "shape", shape.Kind)
			continue
		}
		angle, _ := p.engine.Angle(id)
		out = append(out, Rect{
			Body:  id,
			X:     shape.Center.X,
			Y:     shape.Center.Y,
			W:     2 * shape.HalfExtents.X,
			H:     2 * shape.HalfExtents.Y,
			Angle: angle,
		})
	}
	return out
}
