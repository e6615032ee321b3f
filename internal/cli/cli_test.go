package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceq/internal/dummy"
	"voiceq/internal/logging"
	"voiceq/internal/runner"
)

func init() {
	logging.Discard()
}

func TestMonitor(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	cfg := runner.DefaultConfig()
	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	cfg.Timeout = time.Second
	cfg.Stagger = 0
	cfg.ThinkTime = 0

	r := runner.NewRunner(cfg, make(runner.StatsUpdateChan, 100))
	var buf bytes.Buffer
	sum, err := Monitor(context.Background(), &buf, r, 2, 2, []string{"dark mode", "xyz"})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.TotalCommands)
	out := buf.String()
	assert.Contains(t, out, "STARTING VOICEQ LOAD TEST")
	assert.Contains(t, out, "LOAD TEST RESULTS (2 clients)")
	if sum.SuccessfulCommands < 4 {
		assert.Contains(t, out, "x unrecognized")
	}
}

func TestMonitorLeavesNoUpdatesBehind(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	cfg := runner.DefaultConfig()
	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	cfg.Timeout = time.Second
	cfg.Stagger = 0
	cfg.ThinkTime = 250 * time.Millisecond

	r := runner.NewRunner(cfg, make(runner.StatsUpdateChan, 100))
	for _, clients := range []int{1, 2} {
		var buf bytes.Buffer
		_, err := Monitor(context.Background(), &buf, r, clients, 2, []string{"dark mode"})
		require.NoError(t, err)
		assert.Empty(t, r.Updates, "clients=%d", clients)
		assert.Contains(t, buf.String(), "100%")
	}
}

func TestDrain(t *testing.T) {
	updates := make(runner.StatsUpdateChan, 4)
	updates <- runner.StatsSnapshot{Commands: 1}
	updates <- runner.StatsSnapshot{Commands: 2, Success: 2, Done: true}

	var buf bytes.Buffer
	drain(&buf, updates, 2)
	assert.Empty(t, updates)
	assert.Contains(t, buf.String(), " 50%")
	assert.Contains(t, buf.String(), "100%")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----]", progressBar(0, 4))
	assert.Equal(t, "[██--]", progressBar(0.5, 4))
	assert.Equal(t, "[████]", progressBar(2, 4))
}

func TestPrintSweep(t *testing.T) {
	var buf bytes.Buffer
	PrintSweep(&buf, []runner.LoadTestSummary{
		{Clients: 1, TotalCommands: 3, SuccessRate: 100, AverageLatency: 0.05, Throughput: 1.2, MaxConcurrent: 1},
		{Clients: 5, TotalCommands: 15, SuccessRate: 93.33, AverageLatency: 0.08, Throughput: 4.8, MaxConcurrent: 5},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "93.33%")
}
