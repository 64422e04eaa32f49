package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sheetcalc/internal/engine"
)

// maxRows bounds the cell list; the rest is summarised in one line.
const maxRows = 20

type progressModel struct {
	title      string
	events     <-chan engine.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []cellItem
	index      map[string]int
	stageLabel string
	finished   int
	width      int
	done       bool
}

type cellItem struct {
	cell   string
	status string
	stage  engine.Stage
}

type eventMsg engine.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders recalculation
// progress for cells. Cells not listed up front are added when a queued
// event names them. The model quits when events is closed.
func NewProgressModel(title string, cells []string, events <-chan engine.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]cellItem, 0, len(cells))
	index := make(map[string]int, len(cells))
	for i, cell := range cells {
		items = append(items, cellItem{cell: cell, status: "queued"})
		index[cell] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(engine.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s %d/%d", m.title, m.finished, len(m.items))
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	shown := m.visible()
	for _, item := range shown {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.cell, nameWidth))
	}
	if rest := len(m.items) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "  %12s ... %d more cells\n", "", rest)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visible picks up to maxRows cells, preferring those still in flight
// and failed ones over finished cells.
func (m *progressModel) visible() []cellItem {
	if len(m.items) <= maxRows {
		return m.items
	}
	out := make([]cellItem, 0, maxRows)
	for _, pass := range []func(string) bool{
		func(s string) bool { return s != "done" && s != "queued" },
		func(s string) bool { return s == "queued" },
		func(s string) bool { return s == "done" },
	} {
		for _, item := range m.items {
			if len(out) == maxRows {
				return out
			}
			if pass(item.status) {
				out = append(out, item)
			}
		}
	}
	return out
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev engine.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.Cell == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.Cell]
	if !ok {
		// Cells announced by the engine join the list when queued.
		if ev.Status != engine.StatusQueued {
			return nil
		}
		idx = len(m.items)
		m.items = append(m.items, cellItem{cell: ev.Cell})
		m.index[ev.Cell] = idx
	}
	prev := m.items[idx].status
	if label != "" {
		m.items[idx].status = label
		m.items[idx].stage = ev.Stage
	}
	if finished(label) && !finished(prev) {
		m.finished++
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if finished(item.status) {
			total += 1.0
		} else {
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

func finished(status string) bool {
	return status == "done" || status == "error"
}

func progressFromStage(stage engine.Stage) float64 {
	switch stage {
	case engine.StageParse:
		return 0.2
	case engine.StageEvaluate:
		return 0.6
	default:
		return 0.0
	}
}

func statusLabel(stage engine.Stage, status engine.Status) string {
	switch status {
	case engine.StatusQueued:
		return "queued"
	case engine.StatusDone:
		return "done"
	case engine.StatusError:
		return "error"
	case engine.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage engine.Stage) string {
	switch stage {
	case engine.StageParse:
		return "parsing"
	case engine.StageEvaluate:
		return "evaluating"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "parsing", "evaluating":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
