package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/sim"
)

var presetInfo = map[string]string{
	"classic":  "50 vertices, 40 sub-steps",
	"lite":     "half the vertices, cheap",
	"fidelity": "2000 sub-steps, parallel",
	"jelly":    "soft and wobbly",
	"stiff":    "high tension, damped",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// field is one editable shape setting on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var fields = []field{
	{"vertices", func(c *config.Config) float64 { return float64(c.Vertices) }, func(c *config.Config, v float64) { c.Vertices = int(v) }},
	{"radius", func(c *config.Config) float64 { return c.Radius }, func(c *config.Config, v float64) { c.Radius = v }},
	{"substeps", func(c *config.Config) float64 { return float64(c.SubSteps) }, func(c *config.Config, v float64) { c.SubSteps = int(v) }},
	{"floor", func(c *config.Config) float64 { return c.Tuning.HalfHeight }, func(c *config.Config, v float64) { c.Tuning.HalfHeight = v }},
}

// App is the preset picker that launches a live Model.
type App struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           string
	live          Model
}

func NewApp() *App {
	return &App{state: stateMenu, presets: config.ListPresets()}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if a.state == stateMenu {
			return a.menuKey(key)
		}
		return a.configKey(key)
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.presets[a.cursor]
		a.cfg = config.GetPreset(a.selected)
		a.state, a.fieldCursor, a.err = stateConfig, 0, ""
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	f := fields[a.fieldCursor]
	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(a.editBuf, "%f", &val); err == nil {
				f.set(a.cfg, val)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += string(c)
				}
			}
		}
		return a, nil
	}
	switch msg.String() {
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.fieldCursor > 0 {
			a.fieldCursor--
		}
	case "down", "j":
		if a.fieldCursor < len(fields)-1 {
			a.fieldCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, fmt.Sprintf("%g", f.get(a.cfg))
	case "left", "h":
		f.set(a.cfg, f.get(a.cfg)-1)
	case "right", "l":
		f.set(a.cfg, f.get(a.cfg)+1)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	if err := a.cfg.Validate(); err != nil {
		a.err = err.Error()
		return a, nil
	}
	sess, err := sim.NewSession(a.cfg.SessionSettings())
	if err != nil {
		a.err = err.Error()
		return a, nil
	}
	a.live = NewModel(sess, a.selected)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	}
	return a.live.View()
}

func keyHint(key, what string) string {
	return menuKey.Render(key) + menuIdle.Render(" "+what+"  ")
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("BLOBSIM") + "\n    " + menuSub.Render("soft-body ring") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-12s", name)), menuIdle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHint("j/k", "navigate") + keyHint("enter", "select") + keyHint("q", "quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(a.selected)) + "\n    " + menuSub.Render(presetInfo[a.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8g", f.get(a.cfg))
		if a.editing && i == a.fieldCursor {
			valStr = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", f.name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", f.name)), menuIdle.Render(valStr)))
		}
	}
	if a.err != "" {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(a.err) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "select") + keyHint("h/l", "adjust") + keyHint("s", "start") + keyHint("esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
