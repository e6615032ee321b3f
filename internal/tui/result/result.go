package result

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"voiceq/internal/runner"
	"voiceq/internal/tui/styles"
)

// Model shows the summary of a finished load test.
type Model struct {
	Summary runner.LoadTestSummary
	Errors  map[string]int

	Width  int
	Height int
}

func NewModel(sum runner.LoadTestSummary, errCounts map[string]int) Model {
	return Model{Summary: sum, Errors: errCounts}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}
	sum := m.Summary

	s.WriteString(styles.Title.Render(fmt.Sprintf("📊 Load Test Complete (%d clients)", sum.Clients)))
	s.WriteString("\n\n")

	s.WriteString(styles.Active.Render("Overview"))
	s.WriteString("\n")
	overview := fmt.Sprintf(
		"Commands:       %d\nSuccessful:     %d\nSuccess Rate:   %s\nThroughput:     %.2f/s\nMax Concurrent: %d\nTotal Time:     %.2fs",
		sum.TotalCommands,
		sum.SuccessfulCommands,
		styles.Rate(sum.SuccessRate).Render(fmt.Sprintf("%.2f%%", sum.SuccessRate)),
		sum.Throughput,
		sum.MaxConcurrent,
		sum.TotalTime,
	)
	s.WriteString(styles.Box.Render(overview))
	s.WriteString("\n\n")

	s.WriteString(styles.Active.Render("Latency"))
	s.WriteString("\n")
	latency := fmt.Sprintf(
		"Avg: %.3f s\nP50: %.3f s\nP95: %.3f s\nP99: %.3f s",
		sum.AverageLatency, sum.P50Latency, sum.P95Latency, sum.P99Latency,
	)
	s.WriteString(styles.Box.Render(latency))

	if len(m.Errors) > 0 {
		msgs := make([]string, 0, len(m.Errors))
		for msg := range m.Errors {
			msgs = append(msgs, msg)
		}
		sort.Strings(msgs)

		lines := make([]string, len(msgs))
		for i, msg := range msgs {
			lines[i] = fmt.Sprintf("%d x %s", m.Errors[msg], msg)
		}
		s.WriteString("\n\n")
		s.WriteString(styles.Error.Render("Failures"))
		s.WriteString("\n")
		s.WriteString(styles.Box.Render(strings.Join(lines, "\n")))
	}

	s.WriteString("\n\n")
	s.WriteString(styles.RenderKey("q", "quit"))

	return s.String()
}
