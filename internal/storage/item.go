package storage

import (
	"time"

	"github.com/google/uuid"

	"voiceq/internal/report"
	"voiceq/internal/runner"
)

// Run kinds.
const (
	KindSuite = "suite"
	KindLoad  = "load"
)

type HistoryItem struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Kind      string     `json:"kind"`
	Target    string     `json:"target"`
	Summary   RunSummary `json:"summary"`
}

// RunSummary is the common shape of suite and load results. Latencies are in seconds.
type RunSummary struct {
	Commands       int     `json:"commands"`
	Successful     int     `json:"successful"`
	SuccessRate    float64 `json:"success_rate"`
	AvgLatency     float64 `json:"avg_latency"`
	P95Latency     float64 `json:"p95_latency,omitempty"`
	Throughput     float64 `json:"throughput,omitempty"`
	Clients        int     `json:"clients,omitempty"`
	MaxConcurrent  int64   `json:"max_concurrent,omitempty"`
	FailedSessions int     `json:"failed_sessions,omitempty"`
}

// newItem stamps a fresh time-ordered id, so key order in the bucket is
// chronological.
func newItem(kind, target string, now time.Time) HistoryItem {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return HistoryItem{ID: id.String(), Timestamp: now, Kind: kind, Target: target}
}

func SuiteItem(target string, a report.Analysis, now time.Time) HistoryItem {
	item := newItem(KindSuite, target, now)
	item.Summary = RunSummary{
		Commands:    a.TotalTests,
		Successful:  a.SuccessfulTests,
		SuccessRate: a.SuccessRate,
		AvgLatency:  a.AverageLatency,
	}
	return item
}

func LoadItem(target string, s runner.LoadTestSummary, now time.Time) HistoryItem {
	item := newItem(KindLoad, target, now)
	item.Summary = RunSummary{
		Commands:       s.TotalCommands,
		Successful:     s.SuccessfulCommands,
		SuccessRate:    s.SuccessRate,
		AvgLatency:     s.AverageLatency,
		P95Latency:     s.P95Latency,
		Throughput:     s.Throughput,
		Clients:        s.Clients,
		MaxConcurrent:  s.MaxConcurrent,
		FailedSessions: s.FailedSessions,
	}
	return item
}
