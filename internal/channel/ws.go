package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voiceq/internal/logging"
)

// Envelope is one websocket text frame: an event name and its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSChannel speaks JSON envelopes over a single websocket connection.
type WSChannel struct {
	hooks
	opts Options

	// mu serializes Connect/Disconnect and frame writes; gorilla allows one writer.
	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// NewWS returns an unconnected websocket channel.
func NewWS(opts Options) *WSChannel {
	return &WSChannel{opts: opts.withDefaults()}
}

// Connect dials the service and starts the read loop. It reports false if the
// dial fails and is a no-op when already connected.
func (c *WSChannel) Connect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return true
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		logging.Logger.Warn("websocket connect failed", "url", c.opts.URL, "error", err)
		return false
	}

	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)

	logging.Logger.Debug("websocket connected", "url", c.opts.URL)
	return true
}

// Send writes one command frame tagged with requestID.
func (c *WSChannel) Send(requestID, text string) error {
	payload, err := json.Marshal(map[string]string{
		c.opts.TextKey: text,
		"request_id":   requestID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return c.conn.WriteJSON(Envelope{Event: c.opts.Events.Command, Data: payload})
}

// Disconnect closes the connection. Calling it again is a no-op.
func (c *WSChannel) Disconnect() {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = conn.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

// Connected reports whether a connection is currently held.
func (c *WSChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *WSChannel) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger.Debug("websocket read loop ended", "url", c.opts.URL, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		switch env.Event {
		case c.opts.Events.Action:
			var ev ActionEvent
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				logging.Logger.Warn("dropping malformed action event", "error", err)
				continue
			}
			c.emitAction(ev)
		case c.opts.Events.Error:
			var ev ErrorEvent
			if len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, &ev); err != nil {
					logging.Logger.Warn("dropping malformed error event", "error", err)
					continue
				}
			}
			if ev.Message == "" {
				ev.Message = "Unknown error"
			}
			c.emitError(ev)
		default:
			logging.Logger.Debug("ignoring event", "event", env.Event)
		}
	}
}
