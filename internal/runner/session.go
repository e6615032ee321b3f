package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"voiceq/internal/channel"
	"voiceq/internal/logging"
)

// runSession is one simulated client: connect, wait for its stagger slot,
// then send commands one at a time with a think-time pause after each.
// Cleanup runs on every exit path, including a panic inside the session.
func (r *Runner) runSession(ctx context.Context, id int, commands []string) (err error) {
	log := logging.Logger.With("client", id)

	var (
		ch     channel.Channel
		joined bool
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("client %d: internal error: %v", id, rec)
		}
		if joined {
			r.clientLeft()
		}
		if ch != nil {
			ch.Disconnect()
		}
	}()

	ch, err = r.newChannel(r.Cfg.channelOptions())
	if err != nil {
		return fmt.Errorf("client %d: %w", id, err)
	}
	tracker := NewTracker(id, r.record)
	tracker.Attach(ch)

	if !ch.Connect(ctx) {
		return fmt.Errorf("client %d: %w at %s", id, ErrConnect, r.Cfg.URL)
	}
	r.clientJoined()
	joined = true

	if !sleepCtx(ctx, time.Duration(id)*r.Cfg.Stagger) {
		return ctx.Err()
	}

	for _, entry := range commands {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		text, rerr := r.engine.Render(entry, TemplateData{ClientID: id, RequestID: uuid.NewString()})
		if rerr != nil {
			log.Warn("falling back to raw command", "error", rerr)
			text = entry
		}

		res := execute(ch, tracker, text, nil, r.Cfg.Timeout)
		log.Debug("command resolved", "command", text, "outcome", res.Outcome, "latency", res.Latency)

		if !sleepCtx(ctx, r.Cfg.ThinkTime) {
			return ctx.Err()
		}
	}
	return nil
}
