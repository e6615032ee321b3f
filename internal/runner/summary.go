package runner

import (
	"time"

	"voiceq/internal/stats"
)

// LoadTestSummary aggregates one load run. Latencies are in seconds.
type LoadTestSummary struct {
	Clients            int     `json:"clients"`
	CommandsPerClient  int     `json:"commands_per_client"`
	TotalCommands      int     `json:"total_commands"`
	SuccessfulCommands int     `json:"successful_commands"`
	SuccessRate        float64 `json:"success_rate"`
	AverageLatency     float64 `json:"average_latency"`
	P50Latency         float64 `json:"p50_latency"`
	P95Latency         float64 `json:"p95_latency"`
	P99Latency         float64 `json:"p99_latency"`
	Throughput         float64 `json:"throughput"`
	MaxConcurrent      int64   `json:"max_concurrent"`
	TotalTime          float64 `json:"total_time"`
	Timeouts           int     `json:"timeouts"`
	Errors             int     `json:"errors"`
	FailedSessions     int     `json:"failed_sessions"`
}

// Summarize builds the summary for results collected over elapsed.
func Summarize(results []CommandResult, clients, perClient int, peak int64, elapsed time.Duration, failedSessions int) LoadTestSummary {
	sum := LoadTestSummary{
		Clients:           clients,
		CommandsPerClient: perClient,
		TotalCommands:     len(results),
		MaxConcurrent:     peak,
		TotalTime:         elapsed.Seconds(),
		FailedSessions:    failedSessions,
	}
	if len(results) == 0 {
		return sum
	}

	latencies := make([]time.Duration, 0, len(results))
	var total time.Duration
	for _, r := range results {
		if r.Success {
			sum.SuccessfulCommands++
		}
		switch r.Outcome {
		case OutcomeTimeout:
			sum.Timeouts++
		case OutcomeServiceError, OutcomeConnectionError:
			sum.Errors++
		}
		latencies = append(latencies, r.Latency)
		total += r.Latency
	}

	sum.SuccessRate = 100 * float64(sum.SuccessfulCommands) / float64(sum.TotalCommands)
	sum.AverageLatency = total.Seconds() / float64(len(latencies))

	q := stats.LatencyQuantiles(latencies)
	sum.P50Latency = q.P50
	sum.P95Latency = q.P95
	sum.P99Latency = q.P99

	if sum.TotalTime > 0 {
		sum.Throughput = float64(sum.TotalCommands) / sum.TotalTime
	}
	return sum
}
