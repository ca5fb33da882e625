package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/solar-scene/internal/command"
	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/host"
	"github.com/vovakirdan/solar-scene/internal/netserver"
	"github.com/vovakirdan/solar-scene/internal/world"
)

// Console layout constants
const (
	minWidthForSplit = 100 // Minimum width to show both tables
	maxResults       = 6   // Result lines shown under the tables
	submitTimeout    = 2 * time.Second
	refreshInterval  = 500 * time.Millisecond
)

const (
	paneObjects = iota
	panePoints
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	paneStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	activePaneStyle = paneStyle.BorderForeground(lipgloss.Color("57"))
)

// Backend is what the console needs from the scene host.
type Backend interface {
	Submit(ctx context.Context, origin host.Origin, line string) (host.Result, error)
	Recent(n int) []host.Result
	World() *world.World
}

// Ensure Host implements Backend
var _ Backend = (*host.Host)(nil)

type resultMsg struct {
	res host.Result
	err error
}

// ConsoleModel is the Bubble Tea model for one operator session.
type ConsoleModel struct {
	backend  Backend
	sessions *netserver.SessionRegistry // Optional, can be nil
	user     string

	objects table.Model
	points  table.Model
	input   textinput.Model
	help    help.Model
	keys    ConsoleKeyMap

	pane    int
	results []host.Result
	lastErr error // Transport error from the last submit
	pending bool

	history []string
	histPos int

	width    int
	height   int
	quitting bool
}

// NewConsoleModel creates a console bound to backend.
func NewConsoleModel(backend Backend, sessions *netserver.SessionRegistry, user string, width, height int) ConsoleModel {
	ti := textinput.New()
	ti.Placeholder = "CRO name px py pz sx sy sz qx qy qz model mat1 mat2 vis"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	m := ConsoleModel{
		backend:  backend,
		sessions: sessions,
		user:     user,
		input:    ti,
		help:     help.New(),
		keys:     DefaultConsoleKeyMap(),
		width:    width,
		height:   height,
	}
	m.objects = newTable([]table.Column{
		{Title: "Object", Width: 14},
		{Title: "Position", Width: 24},
		{Title: "Model", Width: 18},
		{Title: "Material", Width: 22},
	})
	m.points = newTable([]table.Column{
		{Title: "Point", Width: 14},
		{Title: "Position", Width: 24},
	})
	m.resize()
	m.refresh()
	return m
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Init starts the refresh loop and the cursor blink.
func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refreshCmd(refreshInterval))
}

// Update handles messages for the console.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case RefreshMsg:
		m.refresh()
		return m, refreshCmd(refreshInterval)

	case resultMsg:
		m.pending = false
		m.lastErr = msg.err
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			return m.submit()

		case key.Matches(msg, m.keys.History):
			m.recall(-1)
			return m, nil

		case key.Matches(msg, m.keys.Forward):
			m.recall(1)
			return m, nil

		case key.Matches(msg, m.keys.NextPane):
			m.pane = (m.pane + 1) % 2
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConsoleModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.pending {
		return m, nil
	}

	m.input.Reset()
	m.history = append(m.history, line)
	m.histPos = len(m.history)

	// Same rule as the console client: a leading X ends the session.
	if line[0] == command.OpQuit[0] {
		m.quitting = true
		return m, tea.Quit
	}

	m.pending = true
	backend := m.backend
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		res, err := backend.Submit(ctx, host.OriginSSH, line)
		return resultMsg{res: res, err: err}
	}
}

// recall moves through submitted lines; delta -1 is older.
func (m *ConsoleModel) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos += delta
	if m.histPos < 0 {
		m.histPos = 0
	}
	if m.histPos >= len(m.history) {
		m.histPos = len(m.history)
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[m.histPos])
	m.input.CursorEnd()
}

func (m *ConsoleModel) refresh() {
	w := m.backend.World()

	objects := w.Objects()
	rows := make([]table.Row, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, table.Row{o.Name, formatVec(o.Position), o.Model, o.Material})
	}
	m.objects.SetRows(rows)

	points := w.Points()
	rows = make([]table.Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, table.Row{p.Name, formatVec(p.Position)})
	}
	m.points.SetRows(rows)

	m.results = m.backend.Recent(maxResults)
}

func (m *ConsoleModel) resize() {
	// Header, results, input, help and borders
	h := m.height - maxResults - 9
	if h < 3 {
		h = 3
	}
	m.objects.SetHeight(h)
	m.points.SetHeight(h)
	if m.width > 4 {
		m.input.Width = m.width - 4
	}
}

// View renders the console.
func (m ConsoleModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	clients := 0
	if m.sessions != nil {
		clients = m.sessions.Count()
	}
	b.WriteString(titleStyle.Render("solar scene"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s | %d clients | %d objects | %d points",
		m.user, clients, len(m.objects.Rows()), len(m.points.Rows()))))
	b.WriteString("\n")

	objects := m.paneView(m.objects, paneObjects)
	points := m.paneView(m.points, panePoints)
	switch {
	case m.width >= minWidthForSplit:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, objects, " ", points))
	case m.pane == paneObjects:
		b.WriteString(objects)
	default:
		b.WriteString(points)
	}
	b.WriteString("\n")

	// Oldest first so the newest result sits next to the input
	for i := len(m.results) - 1; i >= 0; i-- {
		b.WriteString(renderResult(m.results[i]))
		b.WriteString("\n")
	}
	if m.lastErr != nil {
		b.WriteString(errStyle.Render("submit failed: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m ConsoleModel) paneView(t table.Model, pane int) string {
	style := paneStyle
	if pane == m.pane {
		style = activePaneStyle
	}
	return style.Render(t.View())
}

func renderResult(r host.Result) string {
	origin := dimStyle.Render(fmt.Sprintf("%-6s", r.Origin))
	if r.Err != nil {
		return origin + " " + errStyle.Render("err ") + r.Line + dimStyle.Render(": "+r.Err.Error())
	}
	return origin + " " + okStyle.Render("ok  ") + r.Line
}

func formatVec(v core.Vec3) string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", v[0], v[1], v[2])
}
