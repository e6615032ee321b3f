package runner

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceq/internal/channel"
	"voiceq/internal/dummy"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Timeout = 2 * time.Second
	cfg.InterTestDelay = 0
	cfg.Stagger = 10 * time.Millisecond
	cfg.ThinkTime = 0
	return cfg
}

func TestRunSuiteSequential(t *testing.T) {
	s := NewSuite(testConfig(startStub(t, dummy.ServerConfig{})))

	cases := []TestCase{
		{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"},
		{Command: "xyz", Action: "adjust_contrast", Direction: "dark"},
		{Command: "who am i", Action: "show_identity"},
	}
	results, err := s.RunSuite(context.Background(), cases, false, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, "adjust_contrast", results[0].ActualAction)
	assert.Equal(t, "dark", results[0].ActualDirection)

	assert.False(t, results[1].Success)
	assert.Equal(t, ActualError, results[1].ActualAction)
	assert.Equal(t, "unrecognized", results[1].ErrorMessage)

	assert.True(t, results[2].Success)

	for i, r := range results {
		assert.Equal(t, cases[i].Command, r.Command)
		assert.GreaterOrEqual(t, r.Latency, time.Duration(0))
		assert.LessOrEqual(t, r.Latency, s.Cfg.Timeout+100*time.Millisecond)
	}
	assert.Len(t, s.Results(), 3)
}

func TestRunSuiteSilentServiceTimesOut(t *testing.T) {
	cfg := testConfig(startStub(t, dummy.ServerConfig{Silent: true}))
	cfg.Timeout = 100 * time.Millisecond
	s := NewSuite(cfg)

	results, err := s.RunSuite(context.Background(), []TestCase{{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"}}, false, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, ActualTimeout, results[0].ActualAction)
	assert.Equal(t, cfg.Timeout, results[0].Latency)
}

func TestRunSuiteParallel(t *testing.T) {
	s := NewSuite(testConfig(startStub(t, dummy.ServerConfig{Latency: 20 * time.Millisecond})))

	var cases []TestCase
	for i := 0; i < 10; i++ {
		cases = append(cases,
			TestCase{Command: "night mode", Action: "adjust_contrast", Direction: "dark"},
			TestCase{Command: "make it bigger", Action: "adjust_text", Direction: "increase"},
		)
	}

	results, err := s.RunSuite(context.Background(), cases, true, 4)
	require.NoError(t, err)
	require.Len(t, results, len(cases))
	for i, r := range results {
		assert.Equal(t, cases[i].Command, r.Command)
		assert.True(t, r.Success, r.Command)
	}
}

func TestRunSuiteParallelWithoutRequestIDs(t *testing.T) {
	s := NewSuite(testConfig(startStub(t, dummy.ServerConfig{OmitRequestID: true})))

	cases := []TestCase{
		{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"},
		{Command: "smaller text", Action: "adjust_text", Direction: "decrease"},
		{Command: "help me", Action: "trigger_emergency"},
	}
	results, err := s.RunSuite(context.Background(), cases, true, 3)
	require.NoError(t, err)
	for _, r := range results {
		assert.True(t, r.Success, r.Command)
	}
}

func TestRunSuiteConnectFailure(t *testing.T) {
	s := NewSuite(testConfig("ws://127.0.0.1:1/ws"))
	cases := []TestCase{{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"}}

	_, err := s.RunSuite(context.Background(), cases, false, 0)
	assert.ErrorIs(t, err, ErrConnect)

	_, err = s.RunSuite(context.Background(), cases, true, 2)
	assert.ErrorIs(t, err, ErrConnect)
}

func TestRunSuiteHTTPTransport(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Transport = "http"
	s := NewSuite(cfg)

	results, err := s.RunSuite(context.Background(), []TestCase{
		{Command: "dark mode", Action: "adjust_contrast"},
		{Command: "xyz", Action: "error"},
	}, false, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, OutcomeServiceError, results[1].Outcome)
	assert.Equal(t, "unrecognized", results[1].ErrorMessage)
}

func TestRunSuiteCustomEvents(t *testing.T) {
	events := channel.Events{Command: "voice_command", Action: "ui_update", Error: "processing_error"}
	cfg := testConfig(startStub(t, dummy.ServerConfig{Events: events}))
	cfg.Events = events
	cfg.TextKey = "command"
	s := NewSuite(cfg)

	results, err := s.RunSuite(context.Background(), []TestCase{{Command: "too dark", Action: "adjust_contrast", Direction: "light"}}, false, 0)
	require.NoError(t, err)
	assert.True(t, results[0].Success)
}

func TestRunSuiteStopsOnCancel(t *testing.T) {
	cfg := testConfig(startStub(t, dummy.ServerConfig{}))
	cfg.InterTestDelay = time.Hour
	s := NewSuite(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results, err := s.RunSuite(ctx, []TestCase{{Command: "dark mode"}, {Command: "bigger text"}}, false, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, results, 1)
}
