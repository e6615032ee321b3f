package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voiceq/internal/storage"
	"voiceq/internal/tui/styles"
)

// Model is a table of stored runs with a detail pane for the selected row.
type Model struct {
	Items []storage.HistoryItem
	Table table.Model

	Width  int
	Height int
}

func NewModel(items []storage.HistoryItem) Model {
	columns := []table.Column{
		{Title: "Time", Width: 20},
		{Title: "Kind", Width: 6},
		{Title: "Target", Width: 30},
		{Title: "Clients", Width: 8},
		{Title: "Cmds", Width: 6},
		{Title: "Success", Width: 9},
		{Title: "Avg Lat", Width: 9},
	}

	height := len(items) + 1
	if height > 15 {
		height = 15
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := Model{Table: t}
	m.SetItems(items)
	return m
}

func (m *Model) SetItems(items []storage.HistoryItem) {
	m.Items = items
	m.Table.SetRows(Rows(items))
}

// Rows renders items as table rows.
func Rows(items []storage.HistoryItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, item := range items {
		clients := "-"
		if item.Kind == storage.KindLoad {
			clients = fmt.Sprintf("%d", item.Summary.Clients)
		}
		rows[i] = table.Row{
			item.Timestamp.Local().Format(time.DateTime),
			item.Kind,
			item.Target,
			clients,
			fmt.Sprintf("%d", item.Summary.Commands),
			fmt.Sprintf("%.1f%%", item.Summary.SuccessRate),
			fmt.Sprintf("%.3fs", item.Summary.AvgLatency),
		}
	}
	return rows
}

// Selected returns the highlighted item, if any.
func (m Model) Selected() (storage.HistoryItem, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Items) {
		return storage.HistoryItem{}, false
	}
	return m.Items[i], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	out := styles.Box.Render(m.Table.View())

	if item, ok := m.Selected(); ok {
		s := item.Summary
		detail := fmt.Sprintf(
			"ID:          %s\nSuccessful:  %d/%d\nP95 Latency: %.3fs\nThroughput:  %.2f/s\nPeak:        %d\nFailed:      %d sessions",
			item.ID, s.Successful, s.Commands, s.P95Latency, s.Throughput, s.MaxConcurrent, s.FailedSessions,
		)
		out += "\n" + styles.Box.Render(detail)
	}
	return out + "\n" + styles.RenderKey("q", "quit")
}
