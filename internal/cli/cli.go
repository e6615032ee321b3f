package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"voiceq/internal/runner"
)

// Monitor runs one load test headlessly, printing a progress line to w while
// sessions run and a summary once they finish.
func Monitor(ctx context.Context, w io.Writer, r *runner.Runner, clients, perClient int, pool []string) (runner.LoadTestSummary, error) {
	printHeader(w, r.Cfg, clients, perClient)

	type outcome struct {
		sum runner.LoadTestSummary
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sum, err := r.RunLoadTest(ctx, clients, perClient, pool)
		done <- outcome{sum, err}
	}()

	total := uint64(clients * perClient)
	for {
		select {
		case s := <-r.Updates:
			printProgress(w, s, total)
		case out := <-done:
			drain(w, r.Updates, total)
			printSummary(w, r, out.sum)
			return out.sum, out.err
		}
	}
}

// drain prints the snapshots still buffered once a run has returned so none
// of them leak into the next run of a sweep.
func drain(w io.Writer, updates runner.StatsUpdateChan, total uint64) {
	for {
		select {
		case s := <-updates:
			printProgress(w, s, total)
		default:
			return
		}
	}
}

func printHeader(w io.Writer, cfg runner.Config, clients, perClient int) {
	fmt.Fprintf(w, "\n🚀 STARTING VOICEQ LOAD TEST\n")
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Target     : %s (%s)\n", cfg.URL, cfg.Transport)
	fmt.Fprintf(w, "Clients    : %d x %d commands\n", clients, perClient)
	fmt.Fprintf(w, "Stagger    : %s  Think: %s\n", cfg.Stagger, cfg.ThinkTime)
	fmt.Fprintf(w, "Timeout    : %s\n", cfg.Timeout)
	fmt.Fprintf(w, "======================================================================\n\n")
}

func printProgress(w io.Writer, s runner.StatsSnapshot, total uint64) {
	pct := 1.0
	if total > 0 {
		pct = float64(s.Commands) / float64(total)
	}
	fmt.Fprintf(w, "\r%s %3.0f%% | %s | Clients: %d (peak %d) | OK: %s | Fail: %s | P90: %.0fms",
		progressBar(pct, 20), pct*100,
		s.Elapsed.Round(time.Second),
		s.Active, s.Peak,
		humanize.Comma(int64(s.Success)),
		humanize.Comma(int64(s.Fail)),
		s.P90Ms,
	)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

func printSummary(w io.Writer, r *runner.Runner, sum runner.LoadTestSummary) {
	fmt.Fprintf(w, "\n\n📊 LOAD TEST RESULTS (%d clients)\n", sum.Clients)
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Total Time     : %.2fs\n", sum.TotalTime)
	fmt.Fprintf(w, "Commands       : %s\n", humanize.Comma(int64(sum.TotalCommands)))
	fmt.Fprintf(w, "Successful     : %s\n", humanize.Comma(int64(sum.SuccessfulCommands)))
	fmt.Fprintf(w, "Success Rate   : %.2f%%\n", sum.SuccessRate)
	fmt.Fprintf(w, "Throughput     : %.2f commands/sec\n", sum.Throughput)
	fmt.Fprintf(w, "Max Concurrent : %d\n", sum.MaxConcurrent)
	if sum.FailedSessions > 0 {
		fmt.Fprintf(w, "Failed Sessions: %d\n", sum.FailedSessions)
	}
	fmt.Fprintf(w, "\n⏱️  LATENCY (s)\n")
	fmt.Fprintf(w, "   Avg : %.3f\n", sum.AverageLatency)
	fmt.Fprintf(w, "   P50 : %.3f\n", sum.P50Latency)
	fmt.Fprintf(w, "   P95 : %.3f\n", sum.P95Latency)
	fmt.Fprintf(w, "   P99 : %.3f\n", sum.P99Latency)

	errCounts := r.Stats.GetErrorCounts()
	if len(errCounts) > 0 {
		msgs := make([]string, 0, len(errCounts))
		for msg := range errCounts {
			msgs = append(msgs, msg)
		}
		sort.Slice(msgs, func(i, j int) bool { return errCounts[msgs[i]] > errCounts[msgs[j]] })

		fmt.Fprintf(w, "\n❌ FAILURE SUMMARY\n")
		for _, msg := range msgs {
			fmt.Fprintf(w, "   %d x %s\n", errCounts[msg], msg)
		}
	}
	fmt.Fprintf(w, "======================================================================\n")
}

// PrintSweep prints one line per load run of a sweep.
func PrintSweep(w io.Writer, sums []runner.LoadTestSummary) {
	fmt.Fprintf(w, "\n%-8s %-10s %-10s %-12s %-12s %s\n", "CLIENTS", "COMMANDS", "SUCCESS", "AVG LAT", "THROUGHPUT", "PEAK")
	for _, s := range sums {
		fmt.Fprintf(w, "%-8d %-10d %-10s %-12s %-12s %d\n",
			s.Clients,
			s.TotalCommands,
			fmt.Sprintf("%.2f%%", s.SuccessRate),
			fmt.Sprintf("%.3fs", s.AverageLatency),
			fmt.Sprintf("%.2f/s", s.Throughput),
			s.MaxConcurrent,
		)
	}
}
