package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

// Distances returns each point's distance to center.
func Distances(track []sim.Point, center dynamo.Vec2) []float64 {
	out := make([]float64, len(track))
	for i, p := range track {
		out[i] = dynamo.V(p.X, p.Y).Dist(center)
	}
	return out
}

// Revolutions returns the signed number of turns the track makes around
// center. Positive is clockwise on screen, since scene y points down.
func Revolutions(track []sim.Point, center dynamo.Vec2) float64 {
	if len(track) < 2 {
		return 0
	}
	total := 0.0
	prev := math.Atan2(track[0].Y-center.Y, track[0].X-center.X)
	for _, p := range track[1:] {
		cur := math.Atan2(p.Y-center.Y, p.X-center.X)
		delta := cur - prev
		for delta > math.Pi {
			delta -= 2 * math.Pi
		}
		for delta < -math.Pi {
			delta += 2 * math.Pi
		}
		total += delta
		prev = cur
	}
	return total / (2 * math.Pi)
}

// OrbitToASCII plots a track, in scene orientation, on a width x height
// grid. The center, when inside the plotted area, is marked with '*'.
func OrbitToASCII(track []sim.Point, center dynamo.Vec2, width, height int) string {
	if len(track) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := center.X, center.X
	minY, maxY := center.Y, center.Y
	for _, p := range track {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	plot := func(x, y float64, r rune) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := int((y - minY) / rangeY * float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = r
		}
	}

	for _, p := range track {
		plot(p.X, p.Y, '•')
	}
	plot(center.X, center.Y, '*')

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
