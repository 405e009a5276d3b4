package vizserver

import (
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/world"
)

type SceneInfo struct {
	Preset  string               `json:"preset"`
	Width   float64              `json:"width"`
	Height  float64              `json:"height"`
	FPS     int                  `json:"fps"`
	Gravity config.GravityConfig `json:"gravity"`
}

type InitMessage struct {
	Type string    `json:"type"`
	Data SceneInfo `json:"data"`
}

type NodeState struct {
	Image    string  `json:"image"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
}

type FrameData struct {
	Frame         int          `json:"frame"`
	StepsPerFrame int          `json:"steps_per_frame"`
	Nodes         []NodeState  `json:"nodes"`
	Degenerate    int          `json:"degenerate"`
	Stats         world.Stats  `json:"stats"`
	Colliders     []scene.Rect `json:"colliders,omitempty"`
}

type FrameMessage struct {
	Type string    `json:"type"`
	Data FrameData `json:"data"`
}

// ClientMessage is what a viewer may send: "pointer" with X/Y, "reset",
// "steps" with Steps, or "debug".
type ClientMessage struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Steps int     `json:"steps"`
}

func snapshot(pg *scene.Playground, f world.Frame, debug bool) FrameMessage {
	nodes := pg.Stage().Nodes()
	data := FrameData{
		Frame:         pg.Frames(),
		StepsPerFrame: pg.StepsPerFrame(),
		Nodes:         make([]NodeState, 0, len(nodes)),
		Degenerate:    f.Degenerate,
		Stats:         pg.World().Stats(),
	}
	for _, n := range nodes {
		data.Nodes = append(data.Nodes, NodeState{
			Image:    n.Image,
			X:        n.Pos.X,
			Y:        n.Pos.Y,
			Rotation: n.Rotation,
			W:        n.Size.X,
			H:        n.Size.Y,
		})
	}
	if debug {
		data.Colliders = pg.DebugShapes()
	}
	return FrameMessage{Type: "framebatch", Data: data}
}
