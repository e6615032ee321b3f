package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCounts(t *testing.T) {
	s := NewStats()
	assert.Zero(t, s.SuccessRate())
	assert.Zero(t, s.ErrorRate())

	s.Record(true, false, 100*time.Millisecond, "")
	s.Record(false, true, 10*time.Second, "Request timed out")
	s.Record(false, false, 50*time.Millisecond, "unrecognized")
	s.Record(false, false, 60*time.Millisecond, "unrecognized")

	assert.EqualValues(t, 4, s.Commands)
	assert.EqualValues(t, 1, s.Success)
	assert.EqualValues(t, 3, s.Fail)
	assert.EqualValues(t, 1, s.Timeouts)
	assert.EqualValues(t, 2, s.Errors)
	assert.InDelta(t, 25.0, s.SuccessRate(), 1e-9)
	assert.InDelta(t, 75.0, s.ErrorRate(), 1e-9)
	assert.Equal(t, map[string]int{"Request timed out": 1, "unrecognized": 2}, s.GetErrorCounts())
	assert.EqualValues(t, 4, s.Latency.TotalCount())

	s.Reset()
	assert.Zero(t, s.Commands)
	assert.Empty(t, s.GetErrorCounts())
	assert.Zero(t, s.Latency.TotalCount())
}

func TestGaugeTracksPeakUnderContention(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			g.Inc()
			time.Sleep(5 * time.Millisecond)
			g.Dec()
		}()
	}
	close(start)
	wg.Wait()

	assert.Zero(t, g.Active())
	assert.GreaterOrEqual(t, g.Peak(), int64(1))
	assert.LessOrEqual(t, g.Peak(), int64(50))
}

func TestGaugePeakIsHighWaterMark(t *testing.T) {
	var g Gauge
	g.Inc()
	g.Inc()
	g.Inc()
	g.Dec()
	g.Dec()
	g.Inc()
	assert.EqualValues(t, 2, g.Active())
	assert.EqualValues(t, 3, g.Peak())
}

func TestLatencyQuantiles(t *testing.T) {
	assert.Equal(t, Quantiles{}, LatencyQuantiles(nil))

	var sample []time.Duration
	for i := 1; i <= 100; i++ {
		sample = append(sample, time.Duration(i)*time.Millisecond)
	}
	q := LatencyQuantiles(sample)
	require.InDelta(t, 0.050, q.P50, 0.001)
	require.InDelta(t, 0.099, q.P99, 0.001)
	assert.LessOrEqual(t, q.P50, q.P90)
	assert.LessOrEqual(t, q.P90, q.P95)
}
