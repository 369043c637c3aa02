package viz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/export"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"github.com/san-kum/pixelcanvas/internal/stream"
	"github.com/san-kum/pixelcanvas/internal/surface"
)

const (
	chatLines       = 5
	iconCols        = 4
	iconRows        = 2
	historyCapacity = 120

	// SendFlash is how long the send icon stays lit after a message.
	SendFlash = 3 * time.Second
)

type TickMsg time.Time

// ConfigMsg replaces the background config, e.g. after a file reload.
type ConfigMsg struct{ Config *config.Config }

type flashDoneMsg struct{ seq int }

type replyMsg struct {
	text string
	err  error
}

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Model is the interactive app: a pixel background behind a chat prompt
// whose send button carries its own small field.
type Model struct {
	cfg       *config.Config
	iconCfg   *config.Config
	src       pixel.Source
	responder *stream.Responder

	bgCanvas   *Canvas
	bg         *surface.Adapter
	iconCanvas *Canvas
	icon       *surface.Adapter

	width, height int
	bgRect        rect
	iconRect      rect
	hovering      bool
	iconHover     bool
	flashing      bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	messages []stream.ChatMessage
	pending  bool
	sendSeq  int

	activity  []float64
	recorder  *Recorder
	recording bool
	showHelp  bool
	status    string
}

// NewModel builds the app for the given background config. A nil
// responder falls back to the offline echo reply.
func NewModel(cfg *config.Config, src pixel.Source, responder *stream.Responder) Model {
	if responder == nil {
		responder = stream.NewResponder(stream.EchoReply)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 1024
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		cfg:        cfg,
		iconCfg:    config.GetPreset("send-button"),
		src:        src,
		responder:  responder,
		bgCanvas:   NewCanvas(0, 0),
		iconCanvas: NewCanvas(iconCols, iconRows),
		input:      ti,
		viewport:   viewport.New(80, chatLines),
		spinner:    sp,
		activity:   make([]float64, 0, historyCapacity),
	}
	m.bg = m.newAdapter(cfg, m.bgCanvas)
	m.icon = m.newAdapter(m.iconCfg, m.iconCanvas)
	return m
}

func (m *Model) newAdapter(cfg *config.Config, c *Canvas) *surface.Adapter {
	opts, err := cfg.Options()
	if err != nil {
		log.Printf("APP | invalid config err=%v", err)
		m.status = err.Error()
		return surface.New(opts, nil, nil)
	}
	return surface.New(opts, c, m.src)
}

func (m Model) interval() time.Duration {
	return m.bg.Options().Interval()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), textinput.Blink)
}

// Update handles input events and advances both fields.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil

	case tea.FocusMsg:
		m.bg.Handle(surface.FocusIn)
		m.icon.Handle(surface.FocusIn)
		return m, nil

	case tea.BlurMsg:
		m.bg.Handle(surface.FocusOut)
		m.icon.Handle(surface.FocusOut)
		return m, nil

	case tea.MouseMsg:
		return m.mouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.send()
		case "tab":
			m.setHover(!m.hovering)
			return m, nil
		case "ctrl+t":
			m.cycleTheme()
			return m, nil
		case "ctrl+g":
			m.toggleRecording()
			return m, nil
		case "ctrl+s":
			m.snapshot()
			return m, nil
		case "f1":
			m.showHelp = !m.showHelp
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case TickMsg:
		now := time.Time(msg)
		m.bg.Frame(now)
		m.icon.Frame(now)
		if f := m.bg.Field(); f != nil {
			m.activity = append(m.activity, float64(f.Stats().Active()))
			if len(m.activity) > historyCapacity {
				m.activity = m.activity[1:]
			}
		}
		if m.recording && m.bg.Active() {
			m.recorder.CaptureCanvas(m.bgCanvas, 8, 16)
		}
		return m, m.tick()

	case flashDoneMsg:
		if msg.seq == m.sendSeq {
			m.flashing = false
			if !m.iconHover {
				m.icon.Handle(surface.PlayDisappear)
			}
		}
		return m, nil

	case replyMsg:
		m.pending = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.messages = append(m.messages, stream.ChatMessage{Role: "assistant", Content: msg.text})
		m.refreshChat()
		return m, nil

	case ConfigMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// layout splits the terminal into the background, the chat log and the
// input row with the send icon at its right.
func (m *Model) layout(w, h int) {
	m.width, m.height = w, h

	rows := max(1, h-1-1-chatLines-iconRows-1)
	m.bgRect = rect{x: 0, y: 1, w: w, h: rows}
	m.iconRect = rect{x: max(0, w-iconCols), y: 1 + rows + 1 + chatLines, w: iconCols, h: iconRows}

	m.viewport.Width = w
	m.viewport.Height = chatLines
	m.input.Width = max(10, w-iconCols-4)

	dpr := ratio(m.bg.Options().DPR)
	dotsW, dotsH := float64(m.bgRect.w*2), float64(m.bgRect.h*4)
	if err := m.bg.Resize(dotsW/dpr, dotsH/dpr); err != nil {
		log.Printf("APP | resize failed err=%v", err)
	}
	idpr := ratio(m.icon.Options().DPR)
	if err := m.icon.Resize(float64(iconCols*2)/idpr, float64(iconRows*4)/idpr); err != nil {
		log.Printf("APP | icon resize failed err=%v", err)
	}
	log.Printf("APP | layout cols=%d rows=%d field=%dx%d", w, h, m.bgRect.w*2, m.bgRect.h*4)
	m.refreshChat()
}

func ratio(dpr float64) float64 {
	if dpr <= 0 {
		return 1
	}
	return dpr
}

func (m Model) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionMotion:
		m.setHover(m.bgRect.contains(msg.X, msg.Y))
		over := m.iconRect.contains(msg.X, msg.Y)
		if over != m.iconHover {
			m.iconHover = over
			if over {
				m.icon.Handle(surface.PointerEnter)
			} else if !m.flashing {
				m.icon.Handle(surface.PointerLeave)
			}
		}
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && m.iconRect.contains(msg.X, msg.Y) {
			return m.send()
		}
	}
	return m, nil
}

func (m *Model) setHover(on bool) {
	if on == m.hovering {
		return
	}
	m.hovering = on
	if on {
		m.bg.Handle(surface.PointerEnter)
	} else {
		m.bg.Handle(surface.PointerLeave)
	}
}

// send posts the prompt, lights the send icon and asks the responder for
// a reply. The icon fades after SendFlash unless another send restarts it.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.pending {
		return m, nil
	}
	m.input.Reset()
	m.messages = append(m.messages, stream.ChatMessage{Role: "user", Content: text})
	m.refreshChat()
	m.pending = true
	m.sendSeq++
	m.flashing = true
	m.icon.Handle(surface.PlayAppear)

	seq := m.sendSeq
	msgs := append([]stream.ChatMessage(nil), m.messages...)
	responder := m.responder
	return m, tea.Batch(
		tea.Tick(SendFlash, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} }),
		func() tea.Msg {
			var buf bytes.Buffer
			if err := responder.Respond(context.Background(), &buf, msgs); err != nil {
				return replyMsg{err: err}
			}
			reply, err := stream.Decode(&buf)
			return replyMsg{text: reply.Text, err: err}
		},
		m.spinner.Tick,
	)
}

func (m *Model) refreshChat() {
	st := StylesFor(CurrentTheme)
	var b strings.Builder
	for _, msg := range m.messages {
		who := st.User.Render("you")
		if msg.Role == "assistant" {
			who = st.Bot.Render("bot")
		}
		b.WriteString(who + " " + msg.Content + "\n")
	}
	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) cycleTheme() {
	SetTheme(NextTheme().Name)
	cfg := *m.cfg
	cfg.Colors = CurrentTheme.Pixels
	m.applyConfig(&cfg)
	m.status = "theme " + CurrentTheme.Name
}

// applyConfig swaps in a new background field, keeping the current size
// and replaying the appear program if the pointer is still inside.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if _, err := cfg.Options(); err != nil {
		m.status = err.Error()
		return
	}
	m.bg.Close()
	m.cfg = cfg
	m.bgCanvas = NewCanvas(0, 0)
	m.bg = m.newAdapter(cfg, m.bgCanvas)
	if m.width > 0 {
		m.layout(m.width, m.height)
	}
	if m.hovering {
		m.bg.Handle(surface.PointerEnter)
	}
	if m.recording {
		m.recorder = m.newRecorder()
	}
	log.Printf("APP | config applied gap=%d speed=%g colors=%s", cfg.Gap, cfg.Speed, cfg.Colors)
}

func (m *Model) newRecorder() *Recorder {
	opts := m.bg.Options()
	r := NewRecorder(lipglossToRGBA(CurrentTheme.Background), opts.Field.Palette, 2)
	r.MaxFrames = 600
	return r
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recorder = m.newRecorder()
		m.recording = true
		m.status = "recording"
		return
	}
	m.recording = false
	name := fmt.Sprintf("pixelcanvas_%d.gif", time.Now().Unix())
	if err := m.recorder.Save(name); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = "saved " + name
	}
	m.recorder = nil
}

func (m *Model) snapshot() {
	f := m.bg.Field()
	if f == nil {
		return
	}
	name := fmt.Sprintf("pixelcanvas_%d.svg", time.Now().Unix())
	svg := export.FieldToSVG(f, lipglossToRGBA(CurrentTheme.Background), 4)
	if err := os.WriteFile(name, []byte(svg), 0644); err != nil {
		m.status = "svg: " + err.Error()
		return
	}
	m.status = "saved " + name
}

// View renders the TUI interface.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	st := StylesFor(CurrentTheme)
	var s strings.Builder
	s.WriteString(m.header(st) + "\n")

	canvas := strings.TrimSuffix(m.bgCanvas.Render(), "\n")
	s.WriteString(lipgloss.NewStyle().Width(m.bgRect.w).Height(m.bgRect.h).MaxHeight(m.bgRect.h).Render(canvas) + "\n")
	s.WriteString(st.Rule(m.width) + "\n")

	chat := m.viewport.View()
	if m.pending {
		chat = strings.TrimRight(chat, "\n") + "\n" + m.spinner.View() + " thinking"
	}
	s.WriteString(lipgloss.NewStyle().Height(chatLines).MaxHeight(chatLines).Render(chat) + "\n")

	inputBox := lipgloss.NewStyle().Width(max(0, m.width-iconCols)).Height(iconRows).Render(m.input.View())
	icon := strings.TrimSuffix(m.iconCanvas.Render(), "\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, inputBox, icon) + "\n")

	if m.showHelp {
		s.WriteString(st.KeyHint.Render("enter send · tab hover · ctrl+t theme · ctrl+g gif · ctrl+s svg · f1 help · esc quit"))
	} else {
		s.WriteString(m.footer(st))
	}
	return s.String()
}

func (m Model) header(st Styles) string {
	title := GradientText("PIXEL CANVAS", CurrentTheme.Primary, CurrentTheme.Accent)
	return title + " " + st.Subtle.Render(CurrentTheme.Name)
}

func (m Model) footer(st Styles) string {
	state := st.Idle.Render("IDLE")
	if m.bg.Active() {
		state = st.Active.Render(strings.ToUpper(m.bg.Program().String()))
	}
	if m.recording {
		state += " " + st.Recording.Render("REC")
	}

	parts := []string{state}
	if f := m.bg.Field(); f != nil {
		fs := f.Stats()
		frac := 0.0
		if fs.Pixels > 0 {
			frac = float64(fs.Active()) / float64(fs.Pixels)
		}
		parts = append(parts,
			st.MetricLabel.Render("px ")+st.MetricValue.Render(fmt.Sprintf("%d", fs.Pixels)),
			st.Meter(frac, 10),
			st.Sparkline(m.activity, 20),
		)
	}
	if m.status != "" {
		parts = append(parts, st.Subtle.Render(m.status))
	}
	parts = append(parts, st.KeyHint.Render("f1 help"))
	return strings.Join(parts, "  ")
}

// Run starts the interactive app. When cfgPath is set the file is watched
// and every valid change is applied live.
func Run(ctx context.Context, cfg *config.Config, cfgPath string, src pixel.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(cfg, src, nil)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if cfgPath != "" {
		go func() {
			err := config.Watch(ctx, cfgPath, config.DefaultDebounce, func(c *config.Config) {
				p.Send(ConfigMsg{Config: c})
			})
			if err != nil {
				log.Printf("APP | config watch stopped err=%v", err)
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
