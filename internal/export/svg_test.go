package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/sim"
)

func TestBrailleToSVG(t *testing.T) {
	// one cell with the top-left and bottom-right dots
	grid := [][]rune{{brailleBase | 0x01 | 0x80, brailleBase}}

	svg := BrailleToSVG(grid, 2)
	if !strings.HasPrefix(svg, "<?xml") {
		t.Fatal("missing xml header")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="8"`) {
		t.Error("expected width 2 cells * 2 dots * scale 2")
	}
}

func TestBrailleToSVGEmpty(t *testing.T) {
	if BrailleToSVG(nil, 1) != "" {
		t.Error("empty grid should render nothing")
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	result := &sim.Result{
		Points: []sim.Point{
			{Frame: 0, Body: "bunny-0", X: 10, Y: 20},
			{Frame: 0, Body: "bunny-1", X: 50, Y: 50},
			{Frame: 1, Body: "bunny-0", X: 12, Y: 22},
		},
	}

	svg := TrajectoriesToSVG(result, 800, 800)
	if !strings.Contains(svg, `id="bunny-0"`) {
		t.Error("expected a path for bunny-0")
	}
	if strings.Contains(svg, `id="bunny-1"`) {
		t.Error("single-point tracks should be skipped")
	}
	if !strings.Contains(svg, "M10.0,20.0 L12.0,22.0") {
		t.Error("path should use scene coordinates")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	if err := WriteFile(path, ""); err == nil {
		t.Error("expected error for empty document")
	}
	if err := WriteFile(path, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("got %q", data)
	}
}
