package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"voiceq/internal/channel"
	"voiceq/internal/logging"
	"voiceq/internal/stats"
)

// Runner drives many concurrent client sessions against the service.
type Runner struct {
	Cfg      Config
	Stats    *stats.Stats
	Results  []CommandResult
	Observer Observer
	mu       sync.Mutex

	newChannel channelFactory
	engine     *TemplateEngine

	// Event Channel
	Updates StatsUpdateChan
}

// NewRunner returns a runner publishing snapshots on updates.
func NewRunner(cfg Config, updates StatsUpdateChan) *Runner {
	if updates == nil {
		// Avoid nil panics if not provided
		updates = make(StatsUpdateChan, 10)
	}

	return &Runner{
		Cfg:        cfg,
		Stats:      stats.NewStats(),
		Updates:    updates,
		newChannel: channel.New,
		engine:     NewTemplateEngine(cfg.Seed),
	}
}

// StartTickLoop starts a goroutine that pushes stats updates measured from
// start until ctx is cancelled. The returned channel closes once it has exited.
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration, start time.Time) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate(start, false)
			}
		}
	}()
	return exited
}

func (r *Runner) sendUpdate(start time.Time, done bool) {
	s := StatsSnapshot{
		Commands: atomic.LoadUint64(&r.Stats.Commands),
		Success:  atomic.LoadUint64(&r.Stats.Success),
		Fail:     atomic.LoadUint64(&r.Stats.Fail),
		Timeouts: atomic.LoadUint64(&r.Stats.Timeouts),
		Errors:   atomic.LoadUint64(&r.Stats.Errors),
		Active:   r.Stats.Clients.Active(),
		Peak:     r.Stats.Clients.Peak(),
		P50Ms:    r.Stats.GetP50(),
		P90Ms:    r.Stats.GetP90(),
		P99Ms:    r.Stats.GetP99(),
		MaxMs:    r.Stats.Latency.Max() / 1000,
		Elapsed:  time.Since(start),
		Done:     done,
	}

	// Non-blocking send
	select {
	case r.Updates <- s:
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

// RunLoadTest starts numClients sessions, each sending commandsPerClient
// commands drawn with replacement from pool, and summarizes once all of them
// have finished. Sessions that fail to connect are counted, not fatal.
func (r *Runner) RunLoadTest(ctx context.Context, numClients, commandsPerClient int, pool []string) (LoadTestSummary, error) {
	if numClients <= 0 {
		return LoadTestSummary{}, fmt.Errorf("number of clients must be positive, got %d", numClients)
	}
	if commandsPerClient > 0 && len(pool) == 0 {
		return LoadTestSummary{}, errors.New("command pool is empty")
	}

	r.mu.Lock()
	r.Results = nil
	r.mu.Unlock()
	r.Stats.Reset()

	plans := make([][]string, numClients)
	for i := range plans {
		plans[i] = r.engine.Draw(pool, commandsPerClient)
	}

	start := time.Now()
	tickCtx, stopTicks := context.WithCancel(ctx)
	ticks := r.StartTickLoop(tickCtx, 200*time.Millisecond, start)
	defer func() {
		stopTicks()
		<-ticks
	}()

	logging.Logger.Info("load test started", "clients", numClients, "commands_per_client", commandsPerClient, "url", r.Cfg.URL)

	var (
		wg     sync.WaitGroup
		failed int64
	)
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.runSession(ctx, i, plans[i]); err != nil {
				atomic.AddInt64(&failed, 1)
				logging.Logger.Error("client session failed", "client", i, "error", err)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	stopTicks()
	<-ticks
	r.sendUpdate(start, true)

	results := r.Snapshot()
	sum := Summarize(results, numClients, commandsPerClient, r.Stats.Clients.Peak(), elapsed, int(failed))

	logging.Logger.Info("load test finished",
		"clients", numClients,
		"commands", sum.TotalCommands,
		"success_rate", sum.SuccessRate,
		"throughput", sum.Throughput,
		"elapsed", elapsed,
	)
	return sum, ctx.Err()
}

// Snapshot returns a copy of the results recorded so far.
func (r *Runner) Snapshot() []CommandResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CommandResult, len(r.Results))
	copy(out, r.Results)
	return out
}

func (r *Runner) record(res CommandResult) {
	r.Stats.Record(res.Success, res.Outcome == OutcomeTimeout, res.Latency, res.ErrorMessage)

	r.mu.Lock()
	r.Results = append(r.Results, res)
	r.mu.Unlock()

	if r.Observer != nil {
		r.Observer.ObserveResult(res)
	}
}

func (r *Runner) clientJoined() {
	r.Stats.Clients.Inc()
	r.observeClients()
}

func (r *Runner) clientLeft() {
	r.Stats.Clients.Dec()
	r.observeClients()
}

func (r *Runner) observeClients() {
	if r.Observer != nil {
		r.Observer.ObserveClients(r.Stats.Clients.Active(), r.Stats.Clients.Peak())
	}
}
