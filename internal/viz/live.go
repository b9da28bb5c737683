package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
	frameRate       = 60
)

type TickMsg time.Time

// ConstantsMsg replaces the kernel constants from outside the program, for
// example after a config file reload.
type ConstantsMsg particle.Constants

type tunable struct {
	name  string
	field func(c *particle.Constants) *float32
}

var tunables = []tunable{
	{"gravity", func(c *particle.Constants) *float32 { return &c.Gravity }},
	{"damping", func(c *particle.Constants) *float32 { return &c.Damping }},
	{"max_speed", func(c *particle.Constants) *float32 { return &c.MaxSpeed }},
	{"pulse_rate", func(c *particle.Constants) *float32 { return &c.PulseRate }},
	{"phase_step", func(c *particle.Constants) *float32 { return &c.PhaseStep }},
}

// Model is a bubbletea model that advances a driver on every frame and
// draws the particle positions. It only reads the store through
// Driver.View.
type Model struct {
	ctx     context.Context
	driver  *sim.Driver
	clock   sim.Clock
	initial []particle.Particle
	title   string

	canvas   *Canvas
	theme    Theme
	styles   styles
	running  bool
	showHelp bool
	selected int
	notice   string

	energyHistory []float64
	speedHistory  []float64
	last          []float64
	err           error
}

// NewModel builds a live view over d. initial is kept for the reset key.
func NewModel(ctx context.Context, d *sim.Driver, clock sim.Clock, initial []particle.Particle, title string) Model {
	theme := Themes[0]
	return Model{
		ctx:           ctx,
		driver:        d,
		clock:         clock,
		initial:       initial,
		title:         title,
		canvas:        NewCanvas(width, height),
		theme:         theme,
		styles:        newStyles(theme),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.05)
		case "down", "j":
			m.adjust(0.95)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case ConstantsMsg:
		if err := m.driver.SetConstants(particle.Constants(msg)); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = "constants reloaded"
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	dt, t := m.clock.Next()
	if err := m.driver.Step(m.ctx, dt, t); err != nil {
		m.err = err
		m.running = false
		return
	}

	bound := float64(m.driver.Constants().Bound)
	m.driver.View(func(v buffer.View) {
		m.last = metrics.Sample(v, bound)
	})
	m.energyHistory = appendCapped(m.energyHistory, m.last[0])
	m.speedHistory = appendCapped(m.speedHistory, m.last[1])
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// adjust scales the selected constant. Values the kernel rejects are
// reported and dropped.
func (m *Model) adjust(factor float32) {
	c := m.driver.Constants()
	f := tunables[m.selected].field(&c)
	*f *= factor
	if err := m.driver.SetConstants(c); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
}

func (m *Model) reset() {
	if err := m.driver.Reset(m.initial); err != nil {
		m.notice = err.Error()
		return
	}
	if r, ok := m.clock.(sim.Resetter); ok {
		r.Reset()
	}
	m.err = nil
	m.last = nil
	m.notice = ""
	m.energyHistory = m.energyHistory[:0]
	m.speedHistory = m.speedHistory[:0]
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Frame()
	bound := m.driver.Constants().Bound
	m.driver.View(func(v buffer.View) {
		v.Each(func(_ int, p particle.Particle) {
			m.canvas.Plot(p.Position.X, p.Position.Y, bound)
		})
	})
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(m.styles.failed.Render("FAILED") + "\n")
		s.WriteString(m.styles.value.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(m.styles.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(m.styles.paused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	s.WriteString(m.row("Tick", fmt.Sprintf("%d", m.driver.Tick())))
	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", m.driver.Time())))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d", m.driver.Len())))
	s.WriteString(m.row("Backend", m.driver.Backend()))
	if len(m.last) == len(metrics.SampleColumns) {
		s.WriteString(m.row("Energy", fmt.Sprintf("%.4f", m.last[0])))
		s.WriteString(m.row("Max speed", fmt.Sprintf("%.3f", m.last[1])))
		s.WriteString(m.row("Alpha", fmt.Sprintf("%.3f", m.last[3])))
	}
	if len(m.speedHistory) > 0 {
		s.WriteString(m.row("Speed", Sparkline(m.speedHistory, 24)))
	}

	s.WriteString("\nCONSTANTS\n")
	c := m.driver.Constants()
	defaults := particle.DefaultConstants()
	for i, tn := range tunables {
		val := float64(*tn.field(&c))
		ratio := 0.5
		if def := float64(*tn.field(&defaults)); def != 0 {
			ratio = val / (2 * def)
		}
		line := fmt.Sprintf("%-10s %s %.3f", tn.name, ProgressBar(ratio, 10), val)
		if i == m.selected {
			s.WriteString(m.styles.activeParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.styles.value.Render(line) + "\n")
		}
	}
	if m.notice != "" {
		s.WriteString("\n" + m.styles.paused.Render(m.notice) + "\n")
	}

	s.WriteString(m.styles.help.Render("SP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

const helpText = `
  Space    pause / resume
  R        reset to the initial buffer
  Tab      select a constant
  Up/K     increase it by 5%
  Down/J   decrease it by 5%
  T        cycle themes
  ?        toggle this help
  Q        quit
`
