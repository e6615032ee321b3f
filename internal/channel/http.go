package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"voiceq/internal/logging"
)

type intentResponse struct {
	Intent string `json:"intent"`
	Error  string `json:"error"`
}

// HTTPChannel maps the request/response /ai-intent endpoint onto the channel
// contract: every Send posts in the background and reports through the hooks.
type HTTPChannel struct {
	hooks
	opts   Options
	client *http.Client

	mu        sync.Mutex
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
	inflight  sync.WaitGroup
}

// NewHTTP returns an HTTP intent channel posting to opts.URL.
func NewHTTP(opts Options) *HTTPChannel {
	opts = opts.withDefaults()

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 16

	return &HTTPChannel{
		opts:   opts,
		client: &http.Client{Transport: t, Timeout: 60 * time.Second},
	}
}

// Connect probes the service and marks the channel ready for sends.
func (c *HTTPChannel) Connect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/", nil)
	if err != nil {
		logging.Logger.Warn("http connect failed", "url", c.opts.URL, "error", err)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logging.Logger.Warn("http connect failed", "url", c.opts.URL, "error", err)
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		logging.Logger.Warn("http connect failed", "url", c.opts.URL, "status", resp.StatusCode)
		return false
	}
	c.connected = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return true
}

// Send posts the command in the background and reports the reply through the hooks.
func (c *HTTPChannel) Send(requestID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}

	body, err := json.Marshal(map[string]string{c.opts.TextKey: text})
	if err != nil {
		return err
	}

	c.inflight.Add(1)
	go func(ctx context.Context) {
		defer c.inflight.Done()
		c.post(ctx, requestID, body)
	}(c.ctx)
	return nil
}

func (c *HTTPChannel) post(ctx context.Context, requestID string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+c.opts.Path, bytes.NewReader(body))
	if err != nil {
		c.emitError(ErrorEvent{RequestID: requestID, Message: err.Error()})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.emitError(ErrorEvent{RequestID: requestID, Message: err.Error()})
		return
	}
	defer resp.Body.Close()

	var out intentResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	switch {
	case out.Error != "":
		c.emitError(ErrorEvent{RequestID: requestID, Message: out.Error})
	case resp.StatusCode >= 300:
		c.emitError(ErrorEvent{RequestID: requestID, Message: fmt.Sprintf("status %d", resp.StatusCode)})
	case decodeErr != nil:
		c.emitError(ErrorEvent{RequestID: requestID, Message: decodeErr.Error()})
	default:
		c.emitAction(ActionEvent{RequestID: requestID, Action: out.Intent})
	}
}

// Disconnect stops accepting sends, aborts posts still in flight and drops
// idle keep-alive connections.
func (c *HTTPChannel) Disconnect() {
	c.mu.Lock()
	c.connected = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.inflight.Wait()
	c.client.CloseIdleConnections()
}

func (c *HTTPChannel) baseURL() string {
	return strings.TrimRight(c.opts.URL, "/")
}
