package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe wrapper around hdrhistogram
type SafeHistogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

func NewSafeHistogram() *SafeHistogram {
	// 1us to 10min, 3 significant figures
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &SafeHistogram{hist: h}
}

// RecordValue records a latency in microseconds
func (h *SafeHistogram) RecordValue(v int64) error {
	if v < 1 {
		v = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.RecordValue(v)
}

// RecordDuration records d at microsecond resolution.
func (h *SafeHistogram) RecordDuration(d time.Duration) error {
	return h.RecordValue(d.Microseconds())
}

func (h *SafeHistogram) ValueAtQuantile(q float64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.ValueAtQuantile(q)
}

func (h *SafeHistogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Mean()
}

func (h *SafeHistogram) Max() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Max()
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}

func (h *SafeHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hist.Reset()
}

// Quantiles summarises a latency sample in seconds.
type Quantiles struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// LatencyQuantiles builds a throwaway histogram over latencies. Empty input yields zeros.
func LatencyQuantiles(latencies []time.Duration) Quantiles {
	if len(latencies) == 0 {
		return Quantiles{}
	}
	h := NewSafeHistogram()
	for _, l := range latencies {
		h.RecordDuration(l)
	}
	sec := func(q float64) float64 {
		return float64(h.ValueAtQuantile(q)) / 1e6
	}
	return Quantiles{P50: sec(50), P90: sec(90), P95: sec(95), P99: sec(99)}
}
