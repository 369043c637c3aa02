package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pixelcanvas/internal/config"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var presetInfo = map[string]string{
	"background":  "page background, slate",
	"icon":        "small icon, gold and sky",
	"send-button": "icon that ignores focus",
	"calm":        "sparse and slow",
	"still":       "reduced motion",
}

type state int

const (
	stateMenu state = iota
	stateConfig
)

type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"gap", 1,
		func(c *config.Config) float64 { return float64(c.Gap) },
		func(c *config.Config, v float64) { c.Gap = int(v) }},
	{"speed", 5,
		func(c *config.Config) float64 { return c.Speed },
		func(c *config.Config, v float64) { c.Speed = v }},
	{"fps", 5,
		func(c *config.Config) float64 { return float64(c.FPS) },
		func(c *config.Config, v float64) { c.FPS = int(v) }},
	{"dpr", 0.5,
		func(c *config.Config) float64 { return c.DPR },
		func(c *config.Config, v float64) { c.DPR = v }},
}

type model struct {
	state   state
	cursor  int
	presets []string
	name    string
	cfg     *config.Config

	paramCursor int
	editing     bool
	editBuf     string
	err         error

	chosen bool
}

func newPicker() model {
	return model{state: stateMenu, presets: config.ListPresets()}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.name = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.name)
		m.state = stateConfig
		m.paramCursor = 0
		m.err = nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				p.set(m.cfg, val)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				if c := s[0]; (c >= '0' && c <= '9') || c == '.' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%g", p.get(m.cfg))
	case "left", "h":
		p.set(m.cfg, max(0, p.get(m.cfg)-p.step))
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)+p.step)
	case "v":
		if m.cfg.Variant == "icon" {
			m.cfg.Variant = "default"
		} else {
			m.cfg.Variant = "icon"
		}
	case "r":
		m.cfg.ReducedMotion = !m.cfg.ReducedMotion
	case "f":
		m.cfg.NoFocus = !m.cfg.NoFocus
	case "s":
		if _, err := m.cfg.Options(); err != nil {
			m.err = err
			return m, nil
		}
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("        " + cyan.Render("p i x e l c a n v a s") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.name) + "  " + dim.Render(presetInfo[m.name]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, p := range params {
		val := fmt.Sprintf("%8g", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", p.name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", p.name)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	flags := fmt.Sprintf("variant=%s  reduced_motion=%v  no_focus=%v", m.cfg.Variant, m.cfg.ReducedMotion, m.cfg.NoFocus)
	b.WriteString("        " + dim.Render(flags) + "\n")
	b.WriteString("        " + dim.Render("colors "+m.cfg.Colors) + "\n")
	if m.err != nil {
		b.WriteString("        " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  v variant  r motion  f focus  s start  esc back") + "\n")

	return b.String()
}

// Pick shows the preset menu and returns the chosen, possibly edited,
// config and its preset name. A nil config means the user quit.
func Pick() (*config.Config, string, error) {
	p := tea.NewProgram(newPicker(), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, "", err
	}
	m := final.(model)
	if !m.chosen {
		return nil, "", nil
	}
	return m.cfg, m.name, nil
}
