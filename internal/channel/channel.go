package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotConnected is returned by Send before Connect succeeded or after Disconnect.
var ErrNotConnected = errors.New("channel not connected")

// ActionEvent is the service's "resolved with action" reply.
type ActionEvent struct {
	RequestID  string `json:"request_id,omitempty"`
	Action     string `json:"action"`
	Direction  string `json:"direction,omitempty"`
	Feedback   string `json:"feedback,omitempty"`
	Category   string `json:"category,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// ErrorEvent is the service's "resolved with error" reply.
type ErrorEvent struct {
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

// Channel is a persistent, bidirectional connection to the assistant service.
//
// Send never waits for the reply; the reply arrives later through exactly one
// of the registered hooks. Disconnect is safe to call any number of times.
type Channel interface {
	Connect(ctx context.Context) bool
	Send(requestID, text string) error
	Disconnect()
	OnAction(fn func(ActionEvent))
	OnError(fn func(ErrorEvent))
}

// Events names the three event types of the websocket protocol.
type Events struct {
	Command string
	Action  string
	Error   string
}

// DefaultEvents matches the process_command / action_update / error variant of the service.
var DefaultEvents = Events{
	Command: "process_command",
	Action:  "action_update",
	Error:   "error",
}

// Options configures a Channel.
type Options struct {
	URL       string
	Transport string // "ws" or "http"
	Events    Events
	TextKey   string // "text" or "command"
	Path      string // HTTP endpoint path, default /ai-intent

	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Transport == "" {
		o.Transport = "ws"
	}
	if o.Events.Command == "" {
		o.Events.Command = DefaultEvents.Command
	}
	if o.Events.Action == "" {
		o.Events.Action = DefaultEvents.Action
	}
	if o.Events.Error == "" {
		o.Events.Error = DefaultEvents.Error
	}
	if o.TextKey == "" {
		if o.Transport == "http" {
			o.TextKey = "command"
		} else {
			o.TextKey = "text"
		}
	}
	if o.Path == "" {
		o.Path = "/ai-intent"
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	return o
}

// New builds an unconnected Channel for the configured transport.
func New(opts Options) (Channel, error) {
	opts = opts.withDefaults()
	switch opts.Transport {
	case "ws":
		return NewWS(opts), nil
	case "http":
		return NewHTTP(opts), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (use ws or http)", opts.Transport)
	}
}

// hooks stores the two inbound handlers shared by every transport.
type hooks struct {
	mu       sync.RWMutex
	onAction func(ActionEvent)
	onError  func(ErrorEvent)
}

func (h *hooks) OnAction(fn func(ActionEvent)) {
	h.mu.Lock()
	h.onAction = fn
	h.mu.Unlock()
}

func (h *hooks) OnError(fn func(ErrorEvent)) {
	h.mu.Lock()
	h.onError = fn
	h.mu.Unlock()
}

func (h *hooks) emitAction(ev ActionEvent) {
	h.mu.RLock()
	fn := h.onAction
	h.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

func (h *hooks) emitError(ev ErrorEvent) {
	h.mu.RLock()
	fn := h.onError
	h.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}
