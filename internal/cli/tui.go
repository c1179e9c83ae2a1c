package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/graphlens/graphlens/pkg/canvas"
	"github.com/graphlens/graphlens/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listNewStyle      = lipgloss.NewStyle().Foreground(colorGreen)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Messages sent into the model by the streaming session.
type (
	chunkMsg     struct{ accumulated string }
	metadataMsg  struct{ snapshot graph.Snapshot }
	doneMsg      struct{ final string }
	streamErrMsg struct{ err error }
	tickMsg      time.Time
)

// queryModel is the bubbletea model for a streaming query: the answer
// text grows as chunks arrive, and once the metadata frame lands the
// graph panel becomes an explorable node list.
type queryModel struct {
	question string
	savePath string

	answer    string
	streaming bool
	done      bool
	streamErr error
	savedTo   string

	canvas *canvas.Canvas
	cursor int

	width  int
	height int
	frame  int
}

func newQueryModel(question string, seed int64, savePath string) queryModel {
	opts := []canvas.Option{}
	if seed != 0 {
		opts = append(opts, canvas.WithSeed(seed))
	}
	return queryModel{
		question:  question,
		savePath:  savePath,
		streaming: true,
		canvas:    canvas.New(opts...),
		width:     80,
		height:    24,
	}
}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m queryModel) Init() tea.Cmd {
	return tick()
}

func (m queryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		if m.streaming {
			return m, tick()
		}
		return m, nil

	case chunkMsg:
		m.answer = msg.accumulated

	case metadataMsg:
		m.canvas.ApplySnapshot(msg.snapshot)
		m.cursor = 0
		m.syncSelection()

	case doneMsg:
		m.answer = msg.final
		m.streaming = false
		m.done = true

	case streamErrMsg:
		m.streamErr = msg.err
		m.streaming = false
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m queryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.canvas.Nodes()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.syncSelection()
		}

	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
			m.syncSelection()
		}

	case "enter", "e":
		if m.cursor < len(nodes) && nodes[m.cursor].HiddenCount > 0 {
			m.canvas.AcknowledgeNew()
			m.canvas.Expand(nodes[m.cursor].ID)
			m.syncSelection()
		}

	case "x":
		if m.cursor < len(nodes) {
			m.canvas.RemoveNode(nodes[m.cursor].ID)
			if m.cursor >= len(m.canvas.Nodes()) && m.cursor > 0 {
				m.cursor--
			}
			m.syncSelection()
		}

	case "s":
		if m.savePath != "" {
			if snap, ok := m.canvas.Snapshot(); ok {
				if err := graph.WriteSnapshotFile(*snap, m.savePath); err == nil {
					m.savedTo = m.savePath
				}
			}
		}
	}
	return m, nil
}

// syncSelection mirrors the cursor into the canvas selection so the
// detail panel follows it.
func (m *queryModel) syncSelection() {
	nodes := m.canvas.Nodes()
	if len(nodes) == 0 {
		m.canvas.SelectNode("")
		return
	}
	if m.cursor >= len(nodes) {
		m.cursor = len(nodes) - 1
	}
	m.canvas.SelectNode(nodes[m.cursor].ID)
}

func (m queryModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.question))
	b.WriteString("\n\n")

	if m.answer != "" {
		b.WriteString(wrapText(m.answer, m.width-2))
		b.WriteString("\n")
	}
	if m.streaming {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconSpinner.Render(frame) + StyleDim.Render(" streaming..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.graphPanel())

	b.WriteString("\n")
	help := "↑/↓ navigate  ⏎ expand  x remove  q quit"
	if m.savePath != "" {
		help += "  s save"
	}
	b.WriteString(listDimStyle.Render(help))

	return b.String()
}

// graphPanel renders the visible node list and the selection detail.
func (m queryModel) graphPanel() string {
	nodes := m.canvas.Nodes()
	if len(nodes) == 0 {
		return listDimStyle.Render("No graph yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("Graph · %d nodes · %d edges", len(nodes), len(m.canvas.Edges()))))
	b.WriteString("\n")

	visible := m.height - 14
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(nodes))

	for i := start; i < end; i++ {
		n := nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		label := n.DisplayName()
		if n.HiddenCount > 0 {
			label += fmt.Sprintf("  +%d hidden", n.HiddenCount)
		}
		line := fmt.Sprintf("%s%-8s %s", cursor, strings.ToLower(string(n.Role)), label)

		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.IsNew:
			b.WriteString(listNewStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if sel := m.canvas.SelectedNode(); sel != nil && len(sel.Properties) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(propertiesLine(sel)))
		b.WriteString("\n")
	}
	return b.String()
}

func propertiesLine(n *canvas.VisibleNode) string {
	parts := make([]string, 0, len(n.Properties))
	for _, key := range slices.Sorted(maps.Keys(n.Properties)) {
		parts = append(parts, key+"="+n.Properties[key].Display())
	}
	return "  " + strings.Join(parts, "  ")
}
