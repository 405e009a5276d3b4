package scene

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/world"
)

const (
	PlayerSize = 32.0
	StickWidth = 24.0
	StickDepth = 4.0
)

var ErrDeleted = errors.New("scene: already deleted")

// Playground owns the engine, the world and the stage for one scene.
type Playground struct {
	cfg    *config.Config
	logger *log.Logger

	engine engine.Backend
	world  *world.World
	stage  *Stage

	sun     *Sun
	bunnies []*Bunny
	player  *Player

	stepsPerFrame int
	frames        int
	observers     []world.Observer
}

type Option func(*Playground)

func WithLogger(l *log.Logger) Option {
	return func(p *Playground) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver attaches o to every world the playground builds,
// including after Reset.
func WithObserver(o world.Observer) Option {
	return func(p *Playground) { p.observers = append(p.observers, o) }
}

func New(cfg *config.Config, opts ...Option) (*Playground, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Playground{
		cfg:    cfg.Clone(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.build(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Playground) build() error {
	law, err := p.cfg.Gravity.Law()
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	eng, err := engine.New(p.cfg.Engine.ToEngine())
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	p.engine = eng
	p.world = world.New(p.engine, law,
		world.WithLogger(p.logger.WithPrefix("world")),
		world.WithDefaultStrength(p.cfg.Gravity.Strength),
	)
	for _, o := range p.observers {
		p.world.AddObserver(o)
	}
	p.stage = NewStage()
	p.stepsPerFrame = p.cfg.Scene.StepsPerFrame
	p.frames = 0

	sc := p.cfg.Scene
	p.sun = p.addSun(dynamo.V(sc.Width/2, sc.Height/2))
	p.bunnies = make([]*Bunny, 0, len(sc.Bunnies))
	for _, pos := range sc.Bunnies {
		p.AddBunny(pos)
	}
	p.player = p.addPlayer(sc.Player)

	p.logger.Info("playground ready", "engine", p.cfg.Engine.Kind, "bunnies", len(p.bunnies), "strength", p.cfg.Gravity.Strength, "exponent", law.Exponent)
	return nil
}

func (p *Playground) Config() *config.Config { return p.cfg }
func (p *Playground) Engine() engine.Backend { return p.engine }
func (p *Playground) World() *world.World    { return p.world }
func (p *Playground) Stage() *Stage          { return p.stage }
func (p *Playground) Player() *Player        { return p.player }
func (p *Playground) Frames() int            { return p.frames }

// Sun returns the sun, or nil once it has been deleted.
func (p *Playground) Sun() *Sun { return p.sun }

// Bunnies returns the live bunnies in creation order.
func (p *Playground) Bunnies() []*Bunny {
	out := make([]*Bunny, len(p.bunnies))
	copy(out, p.bunnies)
	return out
}

func (p *Playground) StepsPerFrame() int { return p.stepsPerFrame }

// SetStepsPerFrame clamps n to [1, config.DefaultMaxStepsPerFrame].
func (p *Playground) SetStepsPerFrame(n int) {
	p.stepsPerFrame = max(1, min(n, config.DefaultMaxStepsPerFrame))
}

// Frame is the host's per-frame callback: aim the stick at the pointer
// when one is known, then advance the world StepsPerFrame times.
func (p *Playground) Frame(pointer *dynamo.Vec2) world.Frame {
	if pointer != nil && p.player != nil {
		p.player.AimAt(*pointer)
	}
	var last world.Frame
	for range p.stepsPerFrame {
		last = p.world.Step()
	}
	p.frames++
	return last
}

// Reset tears the scene down and rebuilds it from the config.
func (p *Playground) Reset() error {
	p.Close()
	return p.build()
}

// Close drops every registration and sprite. The engine is discarded
// with the playground. Suns and bunnies handed out earlier are detached
// and report ErrDeleted from then on.
func (p *Playground) Close() {
	if p.sun != nil {
		p.sun.pg = nil
	}
	for _, b := range p.bunnies {
		b.pg = nil
	}
	p.world.Close()
	p.stage.Clear()
	p.sun = nil
	p.bunnies = nil
	p.player = nil
}

func (p *Playground) addSun(center dynamo.Vec2) *Sun {
	sc := p.cfg.Scene
	he := dynamo.V(sc.SunHalfExtent, sc.SunHalfExtent)
	id := p.engine.CreateBody(dynamo.BodyDef{
		Kind:        dynamo.Static,
		Position:    center,
		Shape:       dynamo.ShapeCuboid,
		HalfExtents: he,
		Density:     sc.SunDensity,
	})

	node := NewNode(ImageSun)
	node.Size = he.Scale(2)
	node.SetTransform(center, 0)
	p.stage.Add(node)

	h := p.world.Register(world.Body{
		ID:       id,
		Role:     dynamo.RoleSource,
		Strength: p.cfg.Gravity.Strength,
		Visual:   node,
		Name:     "sun",
	})
	return &Sun{pg: p, ID: id, Handle: h, Node: node}
}

// AddBunny drops a bunny at pos and kicks it with the configured impulse.
func (p *Playground) AddBunny(pos dynamo.Vec2) *Bunny {
	sc := p.cfg.Scene
	he := dynamo.V(sc.BunnyHalfExtent, sc.BunnyHalfExtent)
	id := p.engine.CreateBody(dynamo.BodyDef{
		Kind:        dynamo.Dynamic,
		Position:    pos,
		Shape:       dynamo.ShapeCuboid,
		HalfExtents: he,
		Density:     sc.BunnyDensity,
	})
	if !sc.Impulse.IsZero() {
		p.engine.ApplyImpulse(id, sc.Impulse)
	}

	node := NewNode(ImageBunny)
	node.Size = he.Scale(2)
	node.SetTransform(pos, 0)
	p.stage.Add(node)

	role := dynamo.RoleReceiver
	if sc.BunnyStrength != 0 {
		role = dynamo.RoleBoth
	}
	name := fmt.Sprintf("bunny-%d", id)
	h := p.world.Register(world.Body{
		ID:       id,
		Role:     role,
		Strength: sc.BunnyStrength,
		Visual:   node,
		Name:     name,
	})

	b := &Bunny{pg: p, ID: id, Handle: h, Node: node, Name: name}
	p.bunnies = append(p.bunnies, b)
	return b
}

func (p *Playground) addPlayer(pos dynamo.Vec2) *Player {
	avatar := NewNode(ImagePlayer)
	avatar.Size = dynamo.V(PlayerSize, PlayerSize)
	avatar.SetTransform(pos, 0)
	p.stage.Add(avatar)

	stick := NewNode(ImageStick)
	stick.Size = dynamo.V(StickWidth, StickDepth)
	stick.SetTransform(dynamo.V(pos.X+avatar.Size.X/2, pos.Y+2), 0)
	p.stage.Add(stick)

	return &Player{Avatar: avatar, Stick: stick}
}

// destroy undoes a registration: world entry, engine body, sprite.
func (p *Playground) destroy(h world.Handle, id dynamo.BodyID, node *Node) error {
	if err := p.world.Remove(h); err != nil {
		return err
	}
	if !p.engine.DestroyBody(id) {
		p.logger.Warn("engine body already gone", "body", id)
	}
	p.stage.Remove(node)
	return nil
}

type Sun struct {
	pg     *Playground
	ID     dynamo.BodyID
	Handle world.Handle
	Node   *Node
}

// Delete removes the sun from the world, the engine and the stage.
func (s *Sun) Delete() error {
	if s.pg == nil {
		return ErrDeleted
	}
	if err := s.pg.destroy(s.Handle, s.ID, s.Node); err != nil {
		return err
	}
	if s.pg.sun == s {
		s.pg.sun = nil
	}
	s.pg = nil
	return nil
}

type Bunny struct {
	pg     *Playground
	ID     dynamo.BodyID
	Handle world.Handle
	Node   *Node
	Name   string
}

func (b *Bunny) Delete() error {
	if b.pg == nil {
		return ErrDeleted
	}
	if err := b.pg.destroy(b.Handle, b.ID, b.Node); err != nil {
		return err
	}
	for i, x := range b.pg.bunnies {
		if x == b {
			b.pg.bunnies = append(b.pg.bunnies[:i], b.pg.bunnies[i+1:]...)
			break
		}
	}
	b.pg = nil
	return nil
}

// Player is a sprite only; it has no body and takes no part in gravity.
type Player struct {
	Avatar *Node
	Stick  *Node
}

// AimAt rotates the stick to point at target.
func (pl *Player) AimAt(target dynamo.Vec2) {
	d := target.Sub(pl.Stick.Pos)
	pl.Stick.Rotation = math.Atan2(d.Y, d.X)
}
