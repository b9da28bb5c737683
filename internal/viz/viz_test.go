package viz

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/partsim/internal/compute"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if got := c.Grid[0][0]; got != blank|0x1 {
		t.Errorf("expected dot 1 set, got %U", got)
	}
	if got := c.Grid[0][1]; got != blank|0x80 {
		t.Errorf("expected dot 8 set, got %U", got)
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 0) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != blank {
		t.Errorf("expected blank after unset, got %U", c.Grid[0][0])
	}

	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if c.Grid[0][0] != blank {
		t.Error("out of range dot changed the canvas")
	}
}

func TestCanvasProject(t *testing.T) {
	c := NewCanvas(10, 5)

	tests := []struct {
		x, y   float32
		px, py int
	}{
		{-1, 1, 0, 0},
		{1, -1, 19, 19},
		{0, 0, 10, 10},
	}

	for _, tt := range tests {
		px, py := c.Project(tt.x, tt.y, 1)
		if px != tt.px || py != tt.py {
			t.Errorf("Project(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, px, py, tt.px, tt.py)
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Frame()

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 3 {
			t.Errorf("expected 3 cells per line, got %d", n)
		}
	}

	c.Clear()
	for _, l := range strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n") {
		if strings.Trim(l, string(blank)) != "" {
			t.Errorf("expected blank line after clear, got %q", l)
		}
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 3)
	if !c.IsSet(0, 0) || !c.IsSet(7, 3) {
		t.Error("line endpoints not set")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("unexpected sparkline %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "[----]"},
		{0.5, "[==--]"},
		{2, "[====]"},
		{-1, "[----]"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.ratio, 4); got != tt.want {
			t.Errorf("ProgressBar(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	th := Themes[0]
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != Themes[0].Name {
		t.Errorf("expected to wrap to %s, got %s", Themes[0].Name, th.Name)
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	initial := []particle.Particle{
		{Position: particle.Vec2{X: 0.5}, Velocity: particle.Vec2{Y: 0.2}},
		{Position: particle.Vec2{Y: -0.5}, Velocity: particle.Vec2{X: -0.2}},
	}
	d, err := sim.New(initial, compute.NewSerialBackend())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return NewModel(context.Background(), d, sim.NewFixedClock(0.01), initial, "test")
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelSteps(t *testing.T) {
	m := newTestModel(t)

	for i := 0; i < 3; i++ {
		m = send(m, TickMsg{})
	}
	if m.driver.Tick() != 3 {
		t.Errorf("expected 3 ticks, got %d", m.driver.Tick())
	}
	if len(m.energyHistory) != 3 {
		t.Errorf("expected 3 energy samples, got %d", len(m.energyHistory))
	}

	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	m = send(m, TickMsg{})
	if m.driver.Tick() != 3 {
		t.Error("paused model kept stepping")
	}

	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status in view")
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	m = send(m, TickMsg{})
	m = send(m, TickMsg{})

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.driver.Tick() != 0 {
		t.Errorf("expected tick 0 after reset, got %d", m.driver.Tick())
	}
	if len(m.energyHistory) != 0 {
		t.Error("expected history cleared")
	}
}

func TestModelTune(t *testing.T) {
	m := newTestModel(t)

	m = send(m, tea.KeyMsg{Type: tea.KeyUp})
	got := m.driver.Constants().Gravity
	want := float32(particle.DefaultGravity) * 1.05
	if got != want {
		t.Errorf("expected gravity %v, got %v", want, got)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	for i := 0; i < 30; i++ {
		m = send(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	if d := m.driver.Constants().Damping; d > 1 {
		t.Errorf("damping escaped its range: %v", d)
	}
	if m.notice == "" {
		t.Error("expected a notice for rejected constants")
	}
}

func TestModelConstantsMsg(t *testing.T) {
	m := newTestModel(t)

	c := particle.DefaultConstants()
	c.PulseRate = 4
	m = send(m, ConstantsMsg(c))
	if m.driver.Constants().PulseRate != 4 {
		t.Error("constants message not applied")
	}
}
