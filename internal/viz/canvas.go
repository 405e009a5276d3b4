package viz

import (
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid. Dot coordinates run (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= bit
		c.Grid[row][col] |= brailleBlank
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolygon closes the outline through pts.
func (c *Canvas) DrawPolygon(pts [][2]int) {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		c.DrawLine(a[0], a[1], b[0], b[1])
	}
}

func (c *Canvas) FillRect(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps scene pixels onto canvas dots, keeping the aspect ratio
// and centering the scene.
type Viewport struct {
	Scale          float64
	OffsetX        float64
	OffsetY        float64
	sceneW, sceneH float64
}

func NewViewport(c *Canvas, sceneW, sceneH float64) Viewport {
	cw, ch := c.Dots()
	scale := math.Min(float64(cw)/sceneW, float64(ch)/sceneH)
	return Viewport{
		Scale:   scale,
		OffsetX: (float64(cw) - sceneW*scale) / 2,
		OffsetY: (float64(ch) - sceneH*scale) / 2,
		sceneW:  sceneW,
		sceneH:  sceneH,
	}
}

func (v Viewport) ToDots(p dynamo.Vec2) (int, int) {
	return int(math.Round(p.X*v.Scale + v.OffsetX)), int(math.Round(p.Y*v.Scale + v.OffsetY))
}

func (v Viewport) FromDots(x, y int) dynamo.Vec2 {
	return dynamo.V((float64(x)-v.OffsetX)/v.Scale, (float64(y)-v.OffsetY)/v.Scale)
}

// Box returns the corners of a w x h box centered on center, rotated by
// angle, in dots.
func (v Viewport) Box(center dynamo.Vec2, w, h, angle float64) [][2]int {
	hx, hy := w/2, h/2
	local := []dynamo.Vec2{{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy}}
	sin, cos := math.Sincos(angle)
	out := make([][2]int, len(local))
	for i, p := range local {
		r := dynamo.V(p.X*cos-p.Y*sin, p.X*sin+p.Y*cos)
		x, y := v.ToDots(center.Add(r))
		out[i] = [2]int{x, y}
	}
	return out
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
