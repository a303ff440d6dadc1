package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swarmsim/internal/input"
	"github.com/san-kum/swarmsim/internal/metrics"
	"github.com/san-kum/swarmsim/internal/render"
	"github.com/san-kum/swarmsim/internal/scene"
	"github.com/san-kum/swarmsim/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	statsWidth      = 40
	historyCapacity = 300
)

// Builder produces a fresh scene; reset calls it again.
type Builder func() (*scene.Scene, error)

type TickMsg time.Time

// Model drives the simulation from the bubbletea tick: one Step per tick
// while running.
type Model struct {
	build    Builder
	scene    *scene.Scene
	renderer *render.CanvasRenderer
	pointer  *input.Sampler

	name       string
	fps        int
	cols, rows int
	termW      int
	termH      int

	running   bool
	showStats bool
	showHelp  bool
	theme     Theme
	styles    Styles

	population []float64
	speed      []float64
	last       metrics.FrameStats
	err        error
}

func NewModel(name string, fps int, build Builder) (Model, error) {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		build:     build,
		name:      name,
		fps:       fps,
		termW:     defaultCols - 2*padLeft,
		termH:     defaultRows - 2*padTop,
		running:   true,
		showStats: true,
		theme:     ThemeOcean,
		styles:    NewStyles(ThemeOcean),
		pointer:   input.NewSampler(),
	}
	m.renderer = render.NewCanvasRenderer(1, 1)
	m.resize(m.termW, m.termH)
	if err := m.reset(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.running = !m.running
		case "right", "l":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "s":
			m.showStats = !m.showStats
			m.resize(m.termW, m.termH)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width-2*padLeft, msg.Height-2*padTop)
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) panelWidth() int {
	if m.showStats {
		return statsWidth
	}
	return 0
}

func (m *Model) resize(width, height int) {
	m.termW, m.termH = width, height
	m.cols = max(10, width-m.panelWidth())
	m.rows = max(4, height)
	m.renderer.Resize(m.cols, m.rows)
}

// mouse maps a terminal cell onto the first world and feeds the sampler.
func (m *Model) mouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionRelease {
		m.pointer.Release()
		return
	}
	ws := m.scene.Sim.Worlds()
	if len(ws) == 0 {
		return
	}
	col, row := msg.X-padLeft, msg.Y-padTop
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return
	}
	w := ws[0]
	loc := input.Scaled(col, row, w.Width/float64(m.cols), w.Height/float64(m.rows))
	m.pointer.Sample(loc.Sub(w.Camera))
}

func (m *Model) step() {
	s := m.scene.Sim
	if s.Done() {
		m.running = false
		return
	}
	if err := s.Step(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = metrics.Sample(s)
	m.population = appendCapped(m.population, float64(m.last.Live))
	m.speed = appendCapped(m.speed, m.last.MeanSpeed)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) reset() error {
	sc, err := m.build()
	if err != nil {
		return err
	}
	sc.Sim.SetRenderer(m.renderer)
	sc.Sim.SetPointer(m.pointer)
	m.scene = sc
	m.population = m.population[:0]
	m.speed = m.speed[:0]
	m.last = metrics.Sample(sc.Sim)
	m.err = nil
	m.renderer.Canvas.Clear()
	return nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("ERROR")
	case m.scene.Sim.Done():
		return m.styles.Paused.Render("DONE")
	case !m.running:
		return m.styles.Paused.Render("PAUSED")
	}
	return m.styles.Running.Render("RUNNING")
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(colorize(m.renderer.Canvas))
	if !m.showStats {
		return canvasView
	}

	var s strings.Builder
	s.WriteString(m.styles.Header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	if m.err != nil {
		s.WriteString(m.styles.Error.Render(wrap(m.err.Error(), statsWidth-6)) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.scene.Sim.Clock()))
	row("Live", fmt.Sprintf("%d", m.last.Live))
	row("Pooled", fmt.Sprintf("%d", m.last.Pooled))
	row("Fallbacks", fmt.Sprintf("%d", m.last.Fallbacks))
	row("Speed", fmt.Sprintf("%.2f ± %.2f", m.last.MeanSpeed, m.last.SpeedStdDev))
	row("Kinetic", fmt.Sprintf("%.1f", m.last.Kinetic))
	if m.pointer.Sampled() {
		p := m.pointer.Location()
		row("Pointer", fmt.Sprintf("%.0f, %.0f", p.X, p.Y))
	}
	s.WriteString(m.styles.Label.Render("Speed") + SparklineChart(m.speed, statsWidth-18) + "\n")

	if len(m.population) > 1 {
		chart := asciigraph.Plot(m.population,
			asciigraph.Height(4),
			asciigraph.Width(statsWidth-12),
			asciigraph.Caption("Population"))
		s.WriteString(m.styles.Graph.Render(chart) + "\n")
	}

	if m.showHelp {
		s.WriteString(m.styles.Help.Render(helpText))
	} else {
		s.WriteString(m.styles.Help.Render("SP:Pause →:Step R:Reset\nS:Stats T:Theme ?:Help Q:Quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.Panel.Render(s.String()))
}

const helpText = `Space/P  pause or resume
→/L      step one frame (paused)
R        rebuild the scene
S        toggle this panel
T        cycle themes
Mouse    move the pointer
Q        quit`

func wrap(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width] + "\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// Run starts the live view until the user quits.
func Run(name string, fps int, build Builder) error {
	m, err := NewModel(name, fps, build)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

// Frame reports the current simulation frame.
func (m Model) Frame() int { return m.scene.Sim.Clock() }

// Sim exposes the running simulation.
func (m Model) Sim() *sim.Simulation { return m.scene.Sim }
