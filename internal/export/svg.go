package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/gravsim/internal/sim"
)

const brailleBase = 0x2800

// braille dot-to-bit mapping, [row][col]
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// palette cycles per body in trajectory plots
var palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff7f", "#ff7f50", "#7b68ee"}

// BrailleToSVG converts a grid of braille cells to SVG, one circle per dot.
func BrailleToSVG(grid [][]rune, scale float64) string {
	if len(grid) == 0 {
		return ""
	}

	width := float64(len(grid[0])) * scale * 2
	height := float64(len(grid)) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4

	for row := range grid {
		for col, r := range grid[row] {
			if r <= brailleBase {
				continue
			}
			pattern := int(r - brailleBase)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws every body track of a run in scene pixels. The
// scene's y axis already points down, so no flip is applied.
func TrajectoriesToSVG(result *sim.Result, width, height float64) string {
	if result == nil || width <= 0 || height <= 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, body := range result.Bodies() {
		track := result.Track(body)
		if len(track) < 2 {
			continue
		}
		color := palette[i%len(palette)]

		fmt.Fprintf(&sb, `<path id=%q fill="none" stroke="%s" stroke-width="1.5" d="`, body, color)
		for j, p := range track {
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", p.X, p.Y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", p.X, p.Y)
			}
		}
		sb.WriteString("\"/>\n")

		last := track[len(track)-1]
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", last.X, last.Y, color)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteFile writes an SVG document to path.
func WriteFile(path, svg string) error {
	if svg == "" {
		return fmt.Errorf("export: nothing to write")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
