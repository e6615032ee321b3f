package runner

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"voiceq/internal/channel"
	"voiceq/internal/logging"
)

// Sink receives each terminal result exactly once.
type Sink func(CommandResult)

// Pending is one in-flight command.
type Pending struct {
	ID       string
	Command  string
	Expected *Expectation
	Start    time.Time

	done   chan struct{}
	result CommandResult
}

// Tracker correlates inbound channel events with in-flight commands.
//
// A command is resolved by whoever removes it from the pending map first:
// the action/error callback or the timeout path in Wait. Only that party
// builds the result and hands it to the sink.
type Tracker struct {
	clientID int
	sink     Sink

	mu      sync.Mutex
	pending map[string]*Pending
	order   []string
}

// NewTracker returns an empty tracker for one client. A nil sink discards results.
func NewTracker(clientID int, sink Sink) *Tracker {
	if sink == nil {
		sink = func(CommandResult) {}
	}
	return &Tracker{
		clientID: clientID,
		sink:     sink,
		pending:  make(map[string]*Pending),
	}
}

// Attach registers the tracker as the channel's only event handlers.
func (t *Tracker) Attach(ch channel.Channel) {
	ch.OnAction(t.ResolveAction)
	ch.OnError(t.ResolveError)
}

// Submit starts the clock for a command. expected may be nil.
func (t *Tracker) Submit(command string, expected *Expectation) *Pending {
	p := &Pending{
		ID:       uuid.NewString(),
		Command:  command,
		Expected: expected,
		Start:    time.Now(),
		done:     make(chan struct{}),
	}

	t.mu.Lock()
	t.pending[p.ID] = p
	t.order = append(t.order, p.ID)
	t.mu.Unlock()
	return p
}

// Outstanding reports how many commands are still waiting.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// take removes and returns the pending command for id. An empty id takes the
// oldest outstanding command. nil means it was already resolved.
func (t *Tracker) take(id string) *Pending {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" {
		if len(t.order) == 0 {
			return nil
		}
		id = t.order[0]
	}
	p, ok := t.pending[id]
	if !ok {
		return nil
	}
	delete(t.pending, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return p
}

func (t *Tracker) complete(p *Pending, res CommandResult) {
	p.result = res
	t.sink(res)
	close(p.done)
}

func (t *Tracker) base(p *Pending) CommandResult {
	res := CommandResult{
		Command:   p.Command,
		Timestamp: time.Now(),
		ClientID:  t.clientID,
		RequestID: p.ID,
	}
	if p.Expected != nil {
		res.ExpectedAction = p.Expected.Action
		res.ExpectedDirection = p.Expected.Direction
	}
	return res
}

// ResolveAction handles the "resolved with action" event.
func (t *Tracker) ResolveAction(ev channel.ActionEvent) {
	p := t.take(ev.RequestID)
	if p == nil {
		logging.Logger.Debug("dropping late action event", "client", t.clientID, "request_id", ev.RequestID)
		return
	}

	res := t.base(p)
	res.Latency = time.Since(p.Start)
	res.ActualAction = ev.Action
	res.ActualDirection = ev.Direction
	res.Outcome = OutcomeAction
	res.Success = matches(p.Expected, res)
	t.complete(p, res)
}

// ResolveError handles the "resolved with error" event.
func (t *Tracker) ResolveError(ev channel.ErrorEvent) {
	p := t.take(ev.RequestID)
	if p == nil {
		logging.Logger.Debug("dropping late error event", "client", t.clientID, "request_id", ev.RequestID)
		return
	}

	res := t.base(p)
	res.Latency = time.Since(p.Start)
	res.ActualAction = ActualError
	res.Outcome = OutcomeServiceError
	res.ErrorMessage = ev.Message
	res.Success = matches(p.Expected, res)
	t.complete(p, res)
}

// Fail resolves a command whose send never reached the service.
func (t *Tracker) Fail(p *Pending, err error) CommandResult {
	if t.take(p.ID) == nil {
		<-p.done
		return p.result
	}
	res := t.base(p)
	res.Latency = time.Since(p.Start)
	res.ActualAction = ActualError
	res.Outcome = OutcomeConnectionError
	res.ErrorMessage = err.Error()
	t.complete(p, res)
	return res
}

// Wait blocks until p resolves or timeout elapses. On timeout a synthetic
// result with latency equal to timeout is recorded, unless a callback claimed
// the command first, in which case its result is returned.
func (t *Tracker) Wait(p *Pending, timeout time.Duration) CommandResult {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.result
	case <-timer.C:
	}

	if t.take(p.ID) == nil {
		<-p.done
		return p.result
	}

	res := t.base(p)
	res.Latency = timeout
	res.ActualAction = ActualTimeout
	res.Outcome = OutcomeTimeout
	res.ErrorMessage = "Request timed out"
	t.complete(p, res)

	logging.Logger.Warn("command timed out", "client", t.clientID, "command", p.Command, "timeout", timeout)
	return res
}

// matches scores a resolved command. Only an action reply can succeed. With
// an expectation both action and direction must be equal (an empty expected
// direction matches only an empty actual one).
func matches(expected *Expectation, res CommandResult) bool {
	if res.Outcome != OutcomeAction {
		return false
	}
	if expected == nil {
		return res.Outcome == OutcomeAction
	}
	return res.ActualAction == expected.Action && res.ActualDirection == expected.Direction
}

// execute sends one command over ch and waits for its terminal result.
func execute(ch channel.Channel, t *Tracker, command string, expected *Expectation, timeout time.Duration) CommandResult {
	p := t.Submit(command, expected)
	if err := ch.Send(p.ID, command); err != nil {
		logging.Logger.Warn("send failed", "client", t.clientID, "command", command, "error", err)
		return t.Fail(p, err)
	}
	return t.Wait(p, timeout)
}
