package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

func circle(center dynamo.Vec2, radius float64, n, perTurn int) []sim.Point {
	out := make([]sim.Point, n)
	for i := range out {
		p := center.Add(dynamo.FromAngle(2 * math.Pi * float64(i) / float64(perTurn)).Scale(radius))
		out[i] = sim.Point{Frame: i, Body: "bunny-0", X: p.X, Y: p.Y}
	}
	return out
}

func TestDetrend(t *testing.T) {
	out := Detrend([]float64{1, 2, 3})
	if len(out) != 3 || out[0] != -1 || out[1] != 0 || out[2] != 1 {
		t.Errorf("unexpected detrend %v", out)
	}
}

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 256)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * float64(i) / 32)
	}
	if p := DominantPeriod(data, 1); p != 32 {
		t.Errorf("expected period 32, got %v", p)
	}
	if p := DominantPeriod(data, 0.5); p != 16 {
		t.Errorf("expected period 16 with half intervals, got %v", p)
	}
}

func TestDominantPeriodOddLength(t *testing.T) {
	// 7 full periods of 30 samples, not a power of two
	data := make([]float64, 210)
	for i := range data {
		data[i] = 100 + 50*math.Cos(2*math.Pi*float64(i)/30)
	}
	if p := DominantPeriod(data, 1); math.Abs(p-30) > 1e-9 {
		t.Errorf("expected period 30, got %v", p)
	}
}

func TestDominantPeriodFlat(t *testing.T) {
	if p := DominantPeriod([]float64{5, 5, 5, 5}, 1); p != 0 {
		t.Errorf("flat series has no period, got %v", p)
	}
}

func TestDistances(t *testing.T) {
	center := dynamo.V(400, 400)
	for _, d := range Distances(circle(center, 100, 10, 10), center) {
		if math.Abs(d-100) > 1e-9 {
			t.Fatalf("expected 100, got %v", d)
		}
	}
}

func TestRevolutions(t *testing.T) {
	center := dynamo.V(400, 400)
	// two and a half turns
	track := circle(center, 100, 51, 20)
	if r := Revolutions(track, center); math.Abs(r-2.5) > 1e-9 {
		t.Errorf("expected 2.5 turns, got %v", r)
	}

	reversed := make([]sim.Point, len(track))
	for i, p := range track {
		reversed[len(track)-1-i] = p
	}
	if r := Revolutions(reversed, center); math.Abs(r+2.5) > 1e-9 {
		t.Errorf("expected -2.5 turns, got %v", r)
	}

	if Revolutions(track[:1], center) != 0 {
		t.Error("a single point makes no turns")
	}
}

func TestOrbitToASCII(t *testing.T) {
	center := dynamo.V(400, 400)
	out := OrbitToASCII(circle(center, 100, 40, 40), center, 21, 11)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(lines))
	}
	if []rune(lines[5])[10] != '*' {
		t.Errorf("center should be marked in the middle, got %q", lines[5])
	}
	if !strings.Contains(out, "•") {
		t.Error("expected track points")
	}
	if OrbitToASCII(nil, center, 10, 10) != "" {
		t.Error("empty track should render nothing")
	}
}
