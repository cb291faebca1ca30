package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/service"
)

// Days moved per left/right key press.
const viewShiftStep = 7

// chartViewer is a read-only pager over a chart's Gantt bars and table.
type chartViewer struct {
	sess   *service.Session
	opts   formatter.GanttOptions
	table  bool
	vp     viewport.Model
	width  int
	height int
}

func newChartViewer(sess *service.Session, opts formatter.GanttOptions) *chartViewer {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewerKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return &chartViewer{sess: sess, opts: opts, vp: vp}
}

func runProgram(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// viewerKeyMap keeps letters free for the viewer's own commands.
func viewerKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
}

func (m *chartViewer) Init() tea.Cmd { return nil }

func (m *chartViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-2, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "t", "tab":
			m.table = !m.table
			m.refresh()
			m.vp.GotoTop()
			return m, nil
		case "left", "h":
			m.opts.Shift -= viewShiftStep
			m.refresh()
			return m, nil
		case "right", "l":
			m.opts.Shift += viewShiftStep
			m.refresh()
			return m, nil
		case "home", "g":
			m.opts.Shift = 0
			m.vp.GotoTop()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *chartViewer) refresh() {
	m.vp.SetContent(m.content())
}

func (m *chartViewer) content() string {
	if m.table {
		return renderChart(m.sess, false, m.opts)
	}
	opts := m.opts
	if opts.MaxDays <= 0 {
		opts.MaxDays = formatter.DefaultGanttDays
	}
	if m.width > 0 {
		// Leave room for the row labels.
		opts.MaxDays = max(min(opts.MaxDays, m.width-40), 7)
	}
	settings := m.sess.Editor.Settings()
	return formatter.RenderGantt(settings, m.sess.Editor.Snapshot(), opts)
}

func (m *chartViewer) View() string {
	if m.vp.Height == 0 {
		return ""
	}
	mode := "bars"
	if m.table {
		mode = "table"
	}
	hints := []string{
		formatter.StyleHeader.Render(m.sess.Chart.Name),
		formatter.Dim(mode),
		scrollIndicator(m.vp),
		formatter.Dim("t: table/bars  ←/→: week  g: reset  q: quit"),
	}
	sep := lipgloss.NewStyle().Foreground(formatter.ColorDim).Render(strings.Repeat("─", max(m.width, 20)))
	return m.vp.View() + "\n" + sep + "\n" + strings.Join(hints, "  ")
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	return formatter.Dim(fmt.Sprintf("[%d%%]", int(vp.ScrollPercent()*100)))
}
