package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voiceq/internal/runner"
	"voiceq/internal/tui/components"
	"voiceq/internal/tui/styles"
)

// Model renders a running load test from the runner's snapshots.
type Model struct {
	Stats    runner.StatsSnapshot
	Progress progress.Model

	ThroughputLine components.Sparkline
	LatencyLine    components.Sparkline

	// Total is the number of commands the run will resolve.
	Total uint64

	LastUpdate   time.Time
	LastCommands uint64

	Width  int
	Height int
}

func NewModel(total uint64) Model {
	return Model{
		Progress:       progress.New(progress.WithDefaultGradient()),
		ThroughputLine: components.NewSparkline(40, "Commands/s", styles.Active),
		LatencyLine:    components.NewSparkline(40, "Latency P90 (ms)", styles.Warn),
		Total:          total,
		LastUpdate:     time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Percent is the share of expected commands already resolved.
func (m Model) Percent() float64 {
	if m.Total == 0 {
		return 1
	}
	pct := float64(m.Stats.Commands) / float64(m.Total)
	if pct > 1 {
		pct = 1
	}
	return pct
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.StatsSnapshot:
		now := time.Now()
		dt := now.Sub(m.LastUpdate).Seconds()
		if dt < 0.01 {
			dt = 0.01
		}

		m.ThroughputLine.Add(float64(msg.Commands-m.LastCommands) / dt)
		m.LatencyLine.Add(msg.P90Ms)

		m.Stats = msg
		m.LastCommands = msg.Commands
		m.LastUpdate = now

		return m, m.Progress.SetPercent(m.Percent())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 6
		if half < 10 {
			half = 10
		}
		m.ThroughputLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	okRate := 100.0
	if m.Stats.Commands > 0 {
		okRate = float64(m.Stats.Success) / float64(m.Stats.Commands) * 100
	}

	col1 := fmt.Sprintf("CMD: %d/%d\nT:   %s", m.Stats.Commands, m.Total, m.Stats.Elapsed.Round(100*time.Millisecond))
	col2 := fmt.Sprintf("OK:  %.1f%%\nFAIL: %d", okRate, m.Stats.Fail)
	col3 := fmt.Sprintf("TIMEOUT: %d\nERROR:   %d", m.Stats.Timeouts, m.Stats.Errors)
	col4 := fmt.Sprintf("CLIENTS: %d\nPEAK:    %d", m.Stats.Active, m.Stats.Peak)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(styles.Rate(okRate).Render(col2)),
		styles.Box.Render(col3),
		styles.Box.Render(col4),
	))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.ThroughputLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	latencies := fmt.Sprintf(
		"P50: %.1f ms  |  P90: %.1f ms  |  P99: %.1f ms  |  Max: %d ms",
		m.Stats.P50Ms,
		m.Stats.P90Ms,
		m.Stats.P99Ms,
		m.Stats.MaxMs,
	)
	s.WriteString(styles.Box.Render(latencies))
	s.WriteString("\n\n")

	s.WriteString(m.Progress.View())

	return s.String()
}
