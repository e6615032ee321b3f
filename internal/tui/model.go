package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"voiceq/internal/runner"
	"voiceq/internal/tui/live"
	"voiceq/internal/tui/result"
	"voiceq/internal/tui/styles"
)

// run holds the outcome of a load test once finished is closed.
type run struct {
	finished chan struct{}
	summary  runner.LoadTestSummary
	err      error
}

type doneMsg struct{}

type Model struct {
	Runner  *runner.Runner
	Clients int

	Live   live.Model
	Result result.Model

	Done     bool
	Summary  runner.LoadTestSummary
	Err      error
	Quitting bool

	run *run
}

func newModel(r *runner.Runner, clients, perClient int, rn *run) Model {
	return Model{
		Runner:  r,
		Clients: clients,
		Live:    live.NewModel(uint64(clients * perClient)),
		run:     rn,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.waitForDone())
}

func (m Model) waitForUpdate() tea.Cmd {
	updates := m.Runner.Updates
	finished := m.run.finished
	return func() tea.Msg {
		select {
		case s := <-updates:
			return s
		case <-finished:
			select {
			case s := <-updates:
				return s
			default:
				return nil
			}
		}
	}
}

func (m Model) waitForDone() tea.Cmd {
	rn := m.run
	return func() tea.Msg {
		<-rn.finished
		return doneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		m.Result, _ = m.Result.Update(msg)
		return m, cmd

	case runner.StatsSnapshot:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		if m.Done {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.waitForUpdate())

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, cmd

	case doneMsg:
		m.Done = true
		m.Summary = m.run.summary
		m.Err = m.run.err
		m.Result = result.NewModel(m.Summary, m.Runner.Stats.GetErrorCounts())
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.Done {
		return m.Result.View() + "\n"
	}

	s := strings.Builder{}
	s.WriteString(styles.Title.Render("🎙️  VoiceQ Load Test"))
	s.WriteString("\n")

	cfg := m.Runner.Cfg
	s.WriteString(fmt.Sprintf("Target: %s (%s) | Clients: %d | Stagger: %s | Think: %s\n",
		cfg.URL, cfg.Transport, m.Clients, cfg.Stagger, cfg.ThinkTime))
	s.WriteString("\n")
	s.WriteString(m.Live.View())
	s.WriteString("\n")
	s.WriteString(styles.RenderKey("q", "abort"))
	return s.String()
}

// Run executes one load test behind the live view on a fresh update channel.
// Quitting the view cancels the run and waits for sessions to clean up.
func Run(ctx context.Context, r *runner.Runner, clients, perClient int, pool []string) (runner.LoadTestSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.Updates = make(runner.StatsUpdateChan, cap(r.Updates))
	rn := &run{finished: make(chan struct{})}
	go func() {
		defer close(rn.finished)
		rn.summary, rn.err = r.RunLoadTest(ctx, clients, perClient, pool)
	}()

	_, err := tea.NewProgram(newModel(r, clients, perClient, rn), tea.WithAltScreen()).Run()
	cancel()
	<-rn.finished

	if err != nil {
		return rn.summary, fmt.Errorf("live view: %w", err)
	}
	return rn.summary, rn.err
}
