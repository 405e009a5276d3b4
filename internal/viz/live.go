package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 40
	recordingPath   = "gravsim.gif"
	snapshotPath    = "gravsim.svg"

	// canvasStyle padding, in terminal cells
	padLeft = 2
	padTop  = 1
)

type TickMsg time.Time

// Model runs a playground inside Bubble Tea. Every tick is one host
// frame: the mouse position aims the player's stick, then the world
// advances StepsPerFrame steps.
type Model struct {
	pg       *scene.Playground
	preset   string
	fps      int
	logger   *log.Logger
	recorder *metrics.Recorder

	width, height int
	canvas        *Canvas
	view          Viewport

	running   bool
	debug     bool
	showHelp  bool
	recording bool
	gif       Recorder

	pointer *dynamo.Vec2
	last    world.Frame
	energy  []float64
	trails  map[dynamo.BodyID][]dynamo.Vec2
	status  string
}

// NewModel builds the playground for cfg.
func NewModel(cfg *config.Config, preset string, logger *log.Logger) (Model, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rec := metrics.Default(metrics.Bounds{Max: dynamo.V(cfg.Scene.Width, cfg.Scene.Height)})
	pg, err := scene.New(cfg, scene.WithLogger(logger), scene.WithObserver(rec))
	if err != nil {
		return Model{}, err
	}

	canvas := NewCanvas(width, height)
	return Model{
		pg:       pg,
		preset:   preset,
		fps:      cfg.Run.FPS,
		logger:   logger,
		recorder: rec,
		width:    width,
		height:   height,
		canvas:   canvas,
		view:     NewViewport(canvas, cfg.Scene.Width, cfg.Scene.Height),
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
		trails:   make(map[dynamo.BodyID][]dynamo.Vec2),
	}, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(max(1, m.fps)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.pg.Close()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.pg.SetStepsPerFrame(m.pg.StepsPerFrame() + 1)
		case "-", "_":
			m.pg.SetStepsPerFrame(m.pg.StepsPerFrame() - 1)
		case "d":
			m.debug = !m.debug
		case "r":
			m.reset()
		case "x":
			m.deleteBunny()
		case "s":
			m.deleteSun()
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "p":
			m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.pointer = m.toScene(msg.X, msg.Y)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.gif.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// toScene maps a terminal cell to scene pixels, or nil when the cell is
// off the canvas.
func (m Model) toScene(cellX, cellY int) *dynamo.Vec2 {
	col, row := cellX-padLeft, cellY-padTop
	if col < 0 || row < 0 || col >= m.width || row >= m.height {
		return nil
	}
	p := m.view.FromDots(col*2, row*4)
	return &p
}

func (m *Model) step() {
	m.last = m.pg.Frame(m.pointer)

	if ke, ok := m.recorder.Get("kinetic_energy"); ok {
		m.energy = append(m.energy, ke.Value())
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
	}
	for _, s := range m.last.Samples {
		trail := append(m.trails[s.ID], s.Position)
		if len(trail) > trailCapacity {
			trail = trail[1:]
		}
		m.trails[s.ID] = trail
	}
}

func (m *Model) reset() {
	if err := m.pg.Reset(); err != nil {
		m.status = err.Error()
		return
	}
	m.recorder.Reset()
	m.energy = m.energy[:0]
	clear(m.trails)
	m.last = world.Frame{}
	m.status = "reset"
}

func (m *Model) deleteBunny() {
	bunnies := m.pg.Bunnies()
	if len(bunnies) == 0 {
		return
	}
	b := bunnies[len(bunnies)-1]
	if err := b.Delete(); err != nil {
		m.status = err.Error()
		return
	}
	delete(m.trails, b.ID)
	m.status = "deleted " + b.Name
}

func (m *Model) deleteSun() {
	sun := m.pg.Sun()
	if sun == nil {
		return
	}
	if err := sun.Delete(); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "deleted sun"
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.gif.Reset()
		return
	}
	m.recording = false
	if err := m.gif.Save(recordingPath); err != nil {
		m.status = err.Error()
		m.logger.Error("saving recording", "err", err)
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", m.gif.Len(), recordingPath)
}

func (m *Model) snapshot() {
	m.draw()
	if err := export.WriteFile(snapshotPath, export.BrailleToSVG(m.canvas.Grid, 4)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved snapshot to " + snapshotPath
}

func (m *Model) draw() {
	m.canvas.Clear()

	for _, trail := range m.trails {
		for _, p := range trail {
			x, y := m.view.ToDots(p)
			m.canvas.Set(x, y)
		}
	}

	for _, n := range m.pg.Stage().Nodes() {
		switch n.Image {
		case scene.ImageSun:
			box := m.view.Box(n.Pos, n.Size.X, n.Size.Y, n.Rotation)
			m.canvas.FillRect(box[0][0], box[0][1], box[2][0], box[2][1])
		case scene.ImageBunny:
			m.canvas.DrawPolygon(m.view.Box(n.Pos, n.Size.X, n.Size.Y, n.Rotation))
		case scene.ImagePlayer:
			center := n.Pos.Add(n.Size.Scale(0.5))
			m.canvas.DrawPolygon(m.view.Box(center, n.Size.X, n.Size.Y, 0))
		case scene.ImageStick:
			x0, y0 := m.view.ToDots(n.Pos)
			x1, y1 := m.view.ToDots(n.Pos.Add(dynamo.FromAngle(n.Rotation).Scale(n.Size.X)))
			m.canvas.DrawLine(x0, y0, x1, y1)
		}
	}

	if m.debug {
		for _, r := range m.pg.DebugShapes() {
			m.canvas.DrawPolygon(m.view.Box(dynamo.V(r.X, r.Y), r.W, r.H, r.Angle))
		}
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasColor().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render("GRAVSIM · "+strings.ToUpper(m.preset)) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render(fmt.Sprintf("REC %d", m.gif.Len()))
	}
	s.WriteString(status + "\n")
	if m.status != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Dim).Render(m.status) + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	w := m.pg.World()
	stats := w.Stats()
	accent := lipgloss.NewStyle().Foreground(CurrentTheme.Stick)
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.pg.Frames()))
	row("Steps/frame", accent.Render(fmt.Sprintf("%d", m.pg.StepsPerFrame()))+" "+ProgressBar(float64(m.pg.StepsPerFrame())/config.DefaultMaxStepsPerFrame, 10))
	row("Sources", lipgloss.NewStyle().Foreground(CurrentTheme.Sun).Render(fmt.Sprintf("%d", len(w.Sources()))))
	row("Receivers", lipgloss.NewStyle().Foreground(CurrentTheme.Bunny).Render(fmt.Sprintf("%d", len(w.Receivers()))))
	row("Degenerate", fmt.Sprintf("%d", stats.DegeneratePairs))
	for _, metric := range m.recorder.Metrics() {
		if metric.Name() == "kinetic_energy" || metric.Name() == "degenerate_pairs" {
			continue
		}
		row(metric.Name(), fmt.Sprintf("%.3g", metric.Value()))
	}
	if m.pointer != nil {
		row("Pointer", m.pointer.String())
	}
	if m.debug {
		row("Debug", accent.Render("colliders"))
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Steps D:Debug ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  + / -    - More/fewer steps a frame ║
║  D        - Toggle collider outlines ║
║  R        - Reset the playground     ║
║  X        - Delete the newest bunny  ║
║  S        - Delete the sun           ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  P        - Save an SVG snapshot     ║
║  Mouse    - Aim the stick            ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run opens the live view for cfg.
func Run(cfg *config.Config, preset string, logger *log.Logger) error {
	m, err := NewModel(cfg, preset, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
