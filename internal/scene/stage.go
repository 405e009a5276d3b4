package scene

import (
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	ImageSun    = "sun"
	ImageBunny  = "bunny"
	ImagePlayer = "player"
	ImageStick  = "stick"
)

// Node is one sprite on the stage. Pos is the sprite's anchor: body
// center for physics-driven nodes, top-left for the player.
type Node struct {
	Image    string
	Pos      dynamo.Vec2
	Rotation float64
	Size     dynamo.Vec2

	stage *Stage
}

func NewNode(image string) *Node {
	return &Node{Image: image}
}

func (n *Node) SetTransform(pos dynamo.Vec2, rotation float64) {
	n.Pos = pos
	n.Rotation = rotation
}

// Attached reports whether the node is on a stage.
func (n *Node) Attached() bool { return n.stage != nil }

type Stage struct {
	nodes []*Node
}

func NewStage() *Stage {
	return &Stage{nodes: make([]*Node, 0, 16)}
}

// Add appends n, detaching it from any previous stage first.
func (s *Stage) Add(n *Node) {
	if n.stage != nil {
		n.stage.Remove(n)
	}
	n.stage = s
	s.nodes = append(s.nodes, n)
}

func (s *Stage) Remove(n *Node) bool {
	for i, x := range s.nodes {
		if x == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			n.stage = nil
			return true
		}
	}
	return false
}

// Nodes returns the nodes in draw order.
func (s *Stage) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *Stage) Len() int { return len(s.nodes) }

func (s *Stage) Clear() {
	for _, n := range s.nodes {
		n.stage = nil
	}
	s.nodes = s.nodes[:0]
}
