package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceq/internal/runner"
)

func newTestModel() (Model, *run) {
	r := runner.NewRunner(runner.DefaultConfig(), nil)
	rn := &run{finished: make(chan struct{})}
	return newModel(r, 2, 3, rn), rn
}

func TestModelLiveUpdates(t *testing.T) {
	m, _ := newTestModel()

	next, cmd := m.Update(runner.StatsSnapshot{Commands: 3, Success: 2, Fail: 1, Active: 2, Peak: 2, Elapsed: time.Second})
	require.NotNil(t, cmd)
	m = next.(Model)

	assert.InDelta(t, 0.5, m.Live.Percent(), 1e-9)
	view := m.View()
	assert.Contains(t, view, "VoiceQ Load Test")
	assert.Contains(t, view, "CMD: 3/6")
	assert.Contains(t, view, "PEAK:    2")
}

func TestModelShowsResultWhenDone(t *testing.T) {
	m, rn := newTestModel()
	rn.summary = runner.LoadTestSummary{Clients: 2, TotalCommands: 6, SuccessfulCommands: 6, SuccessRate: 100, MaxConcurrent: 2}
	close(rn.finished)

	msg := m.waitForDone()()
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.True(t, m.Done)
	assert.Equal(t, 6, m.Summary.TotalCommands)
	assert.Contains(t, m.View(), "Load Test Complete (2 clients)")
}

func TestWaitForUpdateStopsAfterRun(t *testing.T) {
	m, rn := newTestModel()
	m.Runner.Updates <- runner.StatsSnapshot{Commands: 6, Done: true}
	close(rn.finished)

	msg := m.waitForUpdate()()
	require.IsType(t, runner.StatsSnapshot{}, msg)
	assert.True(t, msg.(runner.StatsSnapshot).Done)

	assert.Nil(t, m.waitForUpdate()())
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	assert.True(t, m.Quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
