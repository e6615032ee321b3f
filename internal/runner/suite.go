package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"voiceq/internal/channel"
	"voiceq/internal/logging"
)

// ErrConnect is returned when the harness cannot reach the service.
var ErrConnect = errors.New("could not connect to service")

type channelFactory func(channel.Options) (channel.Channel, error)

// Suite runs a list of test cases against one service and scores each reply.
type Suite struct {
	Cfg      Config
	Observer Observer

	newChannel channelFactory

	mu      sync.Mutex
	results []CommandResult
}

// NewSuite returns a suite that connects with cfg.
func NewSuite(cfg Config) *Suite {
	return &Suite{
		Cfg:        cfg,
		newChannel: channel.New,
	}
}

// Results returns every result recorded so far in completion order.
func (s *Suite) Results() []CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CommandResult, len(s.results))
	copy(out, s.results)
	return out
}

func (s *Suite) record(res CommandResult) {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()

	if s.Observer != nil {
		s.Observer.ObserveResult(res)
	}
}

// RunSuite executes cases and returns one result per case, in case order.
//
// Sequentially, commands share one connection and are separated by
// Cfg.InterTestDelay. In parallel, up to maxWorkers workers each open their own
// connection and pull cases from a queue. A connection failure aborts the run
// with an error wrapping ErrConnect.
func (s *Suite) RunSuite(ctx context.Context, cases []TestCase, parallel bool, maxWorkers int) ([]CommandResult, error) {
	if len(cases) == 0 {
		return nil, nil
	}
	if !parallel {
		return s.runSequential(ctx, cases)
	}
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if maxWorkers > len(cases) {
		maxWorkers = len(cases)
	}
	return s.runParallel(ctx, cases, maxWorkers)
}

func (s *Suite) connect(ctx context.Context, workerID int) (channel.Channel, *Tracker, error) {
	ch, err := s.newChannel(s.Cfg.channelOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("create channel: %w", err)
	}
	tracker := NewTracker(workerID, s.record)
	tracker.Attach(ch)

	if !ch.Connect(ctx) {
		ch.Disconnect()
		logging.Logger.Error("connection failed", "url", s.Cfg.URL, "worker", workerID)
		return nil, nil, fmt.Errorf("%w at %s", ErrConnect, s.Cfg.URL)
	}
	return ch, tracker, nil
}

func (s *Suite) runSequential(ctx context.Context, cases []TestCase) ([]CommandResult, error) {
	ch, tracker, err := s.connect(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer ch.Disconnect()

	out := make([]CommandResult, 0, len(cases))
	for i, tc := range cases {
		if i > 0 && !sleepCtx(ctx, s.Cfg.InterTestDelay) {
			return out, ctx.Err()
		}
		logging.Logger.Debug("running case", "index", i, "command", tc.Command)
		out = append(out, execute(ch, tracker, tc.Command, tc.Expectation(), s.Cfg.Timeout))
	}
	return out, nil
}

func (s *Suite) runParallel(ctx context.Context, cases []TestCase, workers int) ([]CommandResult, error) {
	out := make([]CommandResult, len(cases))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range cases {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			ch, tracker, err := s.connect(gctx, w)
			if err != nil {
				return err
			}
			defer ch.Disconnect()

			for i := range jobs {
				tc := cases[i]
				out[i] = execute(ch, tracker, tc.Command, tc.Expectation(), s.Cfg.Timeout)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// sleepCtx pauses for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
