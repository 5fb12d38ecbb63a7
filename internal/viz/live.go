package viz

import (
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/export"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	nudgeFrames     = 10
	fps             = 60
)

type TickMsg time.Time

type gravityMode struct {
	name string
	g    r2.Vec
}

var gravityModes = []gravityMode{
	{"down", r2.Vec{X: 0, Y: 1}},
	{"left", r2.Vec{X: -1, Y: 0}},
	{"up", r2.Vec{X: 0, Y: -1}},
	{"right", r2.Vec{X: 1, Y: 0}},
	{"zero", r2.Vec{}},
	{"tilt", r2.Vec{}},
}

// Model is the terminal host for one blob session: it schedules frames on a
// 60 Hz tick, turns keys and mouse events into session inputs and draws the
// ring on a braille canvas.
type Model struct {
	session *sim.Session
	name    string
	radius  float64

	canvas        *Canvas
	view          Viewport
	width, height int
	theme         Theme

	gravity   int
	tiltPhase float64
	nudge     int
	dragging  bool

	report    dynamo.FrameReport
	heights   []float64
	stability *metrics.Stability
	jiggle    *metrics.Jiggle

	params    map[string]float64
	initial   map[string]float64
	paramKeys []string
	selected  int

	recording bool
	frames    []*image.Paletted
	showHelp  bool
	message   string
}

// NewModel wraps an existing session. The model owns the session from here on
// and tears it down on quit.
func NewModel(s *sim.Session, name string) Model {
	st := s.Settings()
	params := s.Params()
	current := params.GetParams()
	keys := make([]string, 0, len(current))
	initial := make(map[string]float64, len(current))
	for k, v := range current {
		keys = append(keys, k)
		initial[k] = v
	}
	sort.Strings(keys)

	stability, jiggle := metrics.NewStability(), metrics.NewJiggle()
	s.AddMetric(stability)
	s.AddMetric(jiggle)

	report, _ := s.Snapshot()
	m := Model{
		session:   s,
		name:      name,
		radius:    st.Radius,
		canvas:    NewCanvas(width, height),
		view:      NewViewport(st.Tuning.HalfWidth, st.Tuning.HalfHeight, width*2, height*4),
		width:     width,
		height:    height,
		theme:     ThemeButter,
		report:    report,
		heights:   make([]float64, 0, historyCapacity),
		stability: stability,
		jiggle:    jiggle,
		params:    current,
		initial:   initial,
		paramKeys: keys,
	}
	m.draw()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the session one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if err := m.frame(); err != nil {
			m.message = err.Error()
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.session.Teardown()
		return m, tea.Quit
	case " ", "space":
		m.session.SetPaused(!m.session.Paused())
	case "n":
		if err := m.session.Step(); err == nil {
			m.refresh(true)
		}
	case "r":
		m.reset()
	case "left", "right", "up", "down":
		m.press(msg.String())
	case "g":
		m.gravity = (m.gravity + 1) % len(gravityModes)
		m.applyGravity()
	case "tab":
		if len(m.paramKeys) > 0 {
			m.selected = (m.selected + 1) % len(m.paramKeys)
		}
	case "+", "=", "k":
		m.adjustParam(1.1)
	case "-", "_", "j":
		m.adjustParam(1 / 1.1)
	case "s":
		m.saveSVG("blob.svg")
	case "c":
		if m.recording {
			m.saveGIF("blob.gif")
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// press holds a direction for nudgeFrames frames. Terminals report key
// presses only, so the release is synthesized when the timer runs out.
func (m *Model) press(key string) {
	m.session.SetDirectionalInput(key == "left", key == "right", key == "up", key == "down")
	m.nudge = nudgeFrames
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	// Canvas padding is one row and two columns.
	p := m.view.CellToWorld(msg.X-2, msg.Y-1)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
	case msg.Action == tea.MouseActionMotion && m.dragging:
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
	default:
		return
	}
	m.session.SetDrag(m.dragging, p.X, p.Y)
}

func (m *Model) applyGravity() {
	mode := gravityModes[m.gravity]
	if mode.name == "tilt" {
		return
	}
	m.session.SetGravity(mode.g.X, mode.g.Y)
}

// frame runs the per-tick host work: synthesized inputs, one advance and a
// redraw.
func (m *Model) frame() error {
	if m.nudge > 0 {
		m.nudge--
		if m.nudge == 0 {
			m.session.SetDirectionalInput(false, false, false, false)
		}
	}
	if gravityModes[m.gravity].name == "tilt" && !m.session.Paused() {
		m.tiltPhase += 1.0 / fps
		g := control.GravityFromOrientation(0, 60+25*math.Sin(m.tiltPhase), 40*math.Sin(m.tiltPhase*0.7), control.MappingPitch, control.DefaultTiltScale)
		m.session.SetGravity(g.X, g.Y)
	}

	if err := m.session.AdvanceFrame(); err != nil {
		return err
	}
	m.refresh(!m.session.Paused())
	if m.recording {
		m.frames = append(m.frames, m.canvas.Image(8, 16))
	}
	return nil
}

// refresh pulls the last report and redraws. advanced marks a new frame for
// the height history.
func (m *Model) refresh(advanced bool) {
	report, err := m.session.Snapshot()
	if err != nil {
		return
	}
	if advanced {
		m.heights = append(m.heights, -report.Centroid.Y)
		if len(m.heights) > historyCapacity {
			m.heights = m.heights[1:]
		}
	}
	m.report = report
	m.draw()
}

func (m *Model) reset() {
	m.session.Reset()
	m.session.SetDrag(false, 0, 0)
	m.session.SetDirectionalInput(false, false, false, false)
	m.dragging, m.nudge = false, 0
	for k, v := range m.initial {
		m.session.SetParam(k, v)
		m.params[k] = v
	}
	m.heights = m.heights[:0]
	m.refresh(false)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 1e-3
	}
	if err := m.session.SetParam(key, val); err != nil {
		m.message = err.Error()
		return
	}
	m.params[key] = val
	m.message = ""
}

// draw renders the last report onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	vs := m.report.Vertices
	if len(vs) == 0 {
		return
	}

	floor := m.view.Project(r2.Vec{X: 0, Y: m.view.HalfHeight})
	if floor.Y >= m.view.H {
		floor.Y = m.view.H - 1
	}
	m.canvas.DrawLine(0, floor.Y, m.view.W-1, floor.Y)

	pts := make([]image.Point, len(vs))
	for i, v := range vs {
		pts[i] = m.view.Project(v)
	}
	m.canvas.DrawPolygon(pts)

	scale := m.view.Scale()
	face := export.FaceFeatures(vs, m.report.Centroid, m.radius)
	for _, eye := range face.Eyes {
		c := m.view.Project(eye.Center)
		m.canvas.Dot(c.X, c.Y, int(math.Max(1, eye.R*scale/2)))
	}
	mouth := m.view.Project(face.Mouth.Center)
	m.canvas.DrawCircle(mouth.X, mouth.Y, int(math.Round(face.Mouth.R*scale)))

	if m.report.Control.Dragging {
		c := m.view.Project(m.report.Centroid)
		t := m.view.Project(m.report.Control.Target)
		m.canvas.DrawLine(c.X, c.Y, t.X, t.Y)
		m.canvas.Dot(t.X, t.Y, 1)
	}
}

func (m *Model) saveSVG(path string) {
	svg := export.BlobSVG(m.report.Vertices, m.report.Centroid, m.radius, int(2*m.view.HalfWidth), int(2*m.view.HalfHeight))
	if err := export.WriteFile(path, svg); err != nil {
		m.message = err.Error()
		return
	}
	m.message = "saved " + path
}

func (m *Model) saveGIF(path string) {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		m.message = err.Error()
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.message = err.Error()
		return
	}
	m.message = fmt.Sprintf("saved %s (%d frames)", path, len(m.frames))
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	body := lipgloss.NewStyle().Foreground(m.theme.Body)
	canvasView := canvasStyle.Render(body.Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	if m.session.Paused() {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render(fmt.Sprintf("REC %d", len(m.frames)))
	}
	s.WriteString(status + "\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Height"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.report.Frame))
	row("Centroid", fmt.Sprintf("%.1f, %.1f", m.report.Centroid.X, m.report.Centroid.Y))
	row("Gravity", gravityModes[m.gravity].name)
	row("Resets", fmt.Sprintf("%d", m.session.Resets()))
	row("Jiggle", fmt.Sprintf("%.3f", m.jiggle.Value()))
	s.WriteString(labelStyle.Render("Stability") + ProgressBar(m.stability.Value(), 16) + "\n")
	if m.report.Control.Dragging {
		row("Drag", fmt.Sprintf("%.0f, %.0f", m.report.Control.Target.X, m.report.Control.Target.Y))
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-14s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause N:Step R:Reset Q:Quit\nG:Gravity ←→↑↓:Nudge ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return mainView + "\n" + lipgloss.NewStyle().Foreground(m.theme.Accent).Render(helpText)
	}
	return mainView
}

const helpText = `
  Space    - Pause/Resume
  N        - Advance one frame
  R        - Reset the blob
  Mouse    - Drag the blob
  Arrows   - Nudge toward a side
  G        - Cycle gravity (down, left, up, right, zero, tilt)
  Tab      - Select parameter
  +/-      - Tune parameter (10%)
  S        - Save blob.svg
  C        - Toggle GIF capture
  T        - Cycle themes
  Q        - Quit`

// Run starts the terminal host for s and blocks until the user quits.
func Run(s *sim.Session, name string) error {
	p := tea.NewProgram(NewModel(s, name), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	s.Teardown()
	return err
}
