package tui

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chimesim/internal/chime"
	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/logging"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"default": "still air, push it yourself",
	"calm":    "long run, no wind",
	"breezy":  "a push every 2s",
	"storm":   "hard pushes twice a second",
	"heavy":   "heavier tubes and clapper",
}

type state int

const (
	stateMenu state = iota
	stateSim
)

const historyLen = 120

// flash remembers the last struck tube. The model is copied on every
// update, so the strike callback writes through a pointer.
type flash struct {
	tube int
	t    float64
}

type model struct {
	state   state
	cursor  int
	presets []string

	base *config.Config
	cfg  *config.Config
	log  *logging.Logger

	chime       *chime.Windchime
	rng         *rand.Rand
	err         error
	paused      bool
	speed       float64
	nextImpulse float64
	flash       *flash
	history     []float64
	lastFrame   time.Time
	fps         float64

	width  int
	height int
}

// NewInteractiveApp starts at the preset menu. base supplies the settings
// for the "default" entry.
func NewInteractiveApp(base *config.Config, log *logging.Logger) *model {
	if base == nil {
		base = config.DefaultConfig()
	}
	return &model{
		state:   stateMenu,
		presets: append([]string{"default"}, config.ListPresets()...),
		base:    base,
		log:     log,
		speed:   1.0,
		width:   80,
		height:  30,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if !m.paused && m.chime != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
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
		m.start(m.presets[m.cursor])
		if m.err != nil {
			return m, nil
		}
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.chime = nil
		return m, tea.ClearScreen
	case "i":
		m.impulse()
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.start(m.presets[m.cursor])
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 8)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start(preset string) {
	cfg := m.base
	if p := config.GetPreset(preset); p != nil {
		cfg = p
	}
	opts := chime.OptionsFromConfig(cfg)
	opts.Logger = m.log

	w, err := chime.Build(opts)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.cfg = cfg
	m.chime = w
	m.rng = rand.New(rand.NewSource(cfg.Seed))
	m.paused = false
	m.speed = 1.0
	m.nextImpulse = 0
	m.flash = &flash{tube: -1}
	m.history = make([]float64, 0, historyLen)
	m.lastFrame = time.Time{}

	f := m.flash
	w.OnStrike(func(s chime.Strike) {
		f.tube, f.t = s.Tube, s.Time
	})
}

func (m *model) impulse() {
	if m.chime != nil {
		m.chime.Impulse(m.rng)
	}
}

// step advances one display frame of simulated time, scaled by speed.
func (m *model) step() {
	w := m.chime
	dt := m.cfg.Dt * m.speed
	if every := m.cfg.ImpulseEvery; every > 0 && w.Time() >= m.nextImpulse {
		m.impulse()
		m.nextImpulse = w.Time() + every
	}
	w.Sync(dt)

	m.history = append(m.history, w.KineticEnergy())
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("c h i m e s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + magenta.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")
	return b.String()
}

func (m model) viewSim() string {
	if m.chime == nil {
		return ""
	}
	w := m.chime

	cw := max(m.width-6, 40)
	ch := max(m.height-10, 16)
	c := newCanvas(cw, ch)
	hot := -1
	if m.flash != nil && w.Time()-m.flash.t < 0.25 {
		hot = m.flash.tube
	}
	drawChime(c, w, hot)

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s  %s\n\n",
		statusIcon, cyan.Render(m.presets[m.cursor]), statusText,
		dim.Render(fmt.Sprintf("t=%.1fs  x%.2g", w.Time(), m.speed)),
		dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, row := range strings.Split(strings.TrimRight(c.String(), "\n"), "\n") {
		b.WriteString("   " + row + "\n")
	}

	s := w.Sample()
	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("strikes="), white.Render(fmt.Sprintf("%d", w.Strikes())),
		dim.Render("pushes="), white.Render(fmt.Sprintf("%d", w.Impulses())),
		dim.Render("swing="), white.Render(fmt.Sprintf("%.2f°", s[chime.TubeSwing]*180/math.Pi)),
		dim.Render("clapper="), white.Render(fmt.Sprintf("%.2f", s[chime.ClapperOffset]))))

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s %s\n", dim.Render("KE"),
			cyan.Render(sparkline(m.history, 48)),
			dim.Render(fmt.Sprintf("%.2fJ", m.history[len(m.history)-1]))))
	}

	b.WriteString("\n" + dim.Render("   i push   space pause  ±speed  r reset  q menu") + "\n")
	return b.String()
}

func RunInteractive(base *config.Config, log *logging.Logger) error {
	p := tea.NewProgram(NewInteractiveApp(base, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
