package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds real-time aggregated metrics for one run
type Stats struct {
	Commands uint64
	Success  uint64
	Fail     uint64
	Timeouts uint64
	Errors   uint64

	// Command latency (microseconds)
	Latency *SafeHistogram

	Clients Gauge

	errMu     sync.Mutex
	errCounts map[string]int
}

func NewStats() *Stats {
	return &Stats{
		Latency:   NewSafeHistogram(),
		errCounts: make(map[string]int),
	}
}

// Record adds one resolved command. errMsg is counted per distinct message
// so the summary can group failures.
func (s *Stats) Record(success, timedOut bool, latency time.Duration, errMsg string) {
	atomic.AddUint64(&s.Commands, 1)
	if success {
		atomic.AddUint64(&s.Success, 1)
	} else {
		atomic.AddUint64(&s.Fail, 1)
	}
	if timedOut {
		atomic.AddUint64(&s.Timeouts, 1)
	} else if errMsg != "" {
		atomic.AddUint64(&s.Errors, 1)
	}
	s.Latency.RecordDuration(latency)

	if errMsg != "" {
		s.errMu.Lock()
		s.errCounts[errMsg]++
		s.errMu.Unlock()
	}
}

// Reset zeroes every counter. Not safe to call while commands are being recorded.
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.Commands, 0)
	atomic.StoreUint64(&s.Success, 0)
	atomic.StoreUint64(&s.Fail, 0)
	atomic.StoreUint64(&s.Timeouts, 0)
	atomic.StoreUint64(&s.Errors, 0)
	s.Latency.Reset()
	s.Clients.Reset()

	s.errMu.Lock()
	s.errCounts = make(map[string]int)
	s.errMu.Unlock()
}

func (s *Stats) SuccessRate() float64 {
	total := atomic.LoadUint64(&s.Commands)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&s.Success)) / float64(total) * 100
}

func (s *Stats) ErrorRate() float64 {
	total := atomic.LoadUint64(&s.Commands)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&s.Fail)) / float64(total) * 100
}

func (s *Stats) GetP50() float64 { return float64(s.Latency.ValueAtQuantile(50)) / 1000.0 }
func (s *Stats) GetP90() float64 { return float64(s.Latency.ValueAtQuantile(90)) / 1000.0 }
func (s *Stats) GetP95() float64 { return float64(s.Latency.ValueAtQuantile(95)) / 1000.0 }
func (s *Stats) GetP99() float64 { return float64(s.Latency.ValueAtQuantile(99)) / 1000.0 }

// GetErrorCounts returns a copy of the failure message tally.
func (s *Stats) GetErrorCounts() map[string]int {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	out := make(map[string]int, len(s.errCounts))
	for k, v := range s.errCounts {
		out[k] = v
	}
	return out
}

// Gauge tracks concurrently active clients and the high-water mark.
type Gauge struct {
	active int64
	peak   int64
}

// Inc marks one more active client and returns the new count.
func (g *Gauge) Inc() int64 {
	n := atomic.AddInt64(&g.active, 1)
	for {
		p := atomic.LoadInt64(&g.peak)
		if n <= p || atomic.CompareAndSwapInt64(&g.peak, p, n) {
			return n
		}
	}
}

func (g *Gauge) Dec() int64 {
	return atomic.AddInt64(&g.active, -1)
}

func (g *Gauge) Active() int64 { return atomic.LoadInt64(&g.active) }
func (g *Gauge) Peak() int64   { return atomic.LoadInt64(&g.peak) }

func (g *Gauge) Reset() {
	atomic.StoreInt64(&g.active, 0)
	atomic.StoreInt64(&g.peak, 0)
}
