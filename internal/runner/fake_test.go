package runner

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"voiceq/internal/channel"
	"voiceq/internal/dummy"
	"voiceq/internal/logging"
)

func init() {
	logging.Discard()
}

type sentCommand struct {
	ID   string
	Text string
}

// fakeChannel records sends and lets tests fire inbound events by hand.
type fakeChannel struct {
	mu          sync.Mutex
	connectOK   bool
	sendErr     error
	panicOnSend bool
	sent        []sentCommand
	disconnects int

	onAction func(channel.ActionEvent)
	onError  func(channel.ErrorEvent)

	// autoReply answers every send synchronously when set.
	autoReply func(id, text string) (*channel.ActionEvent, *channel.ErrorEvent)
}

func (f *fakeChannel) Connect(context.Context) bool { return f.connectOK }

func (f *fakeChannel) Send(id, text string) error {
	if f.panicOnSend {
		panic("boom")
	}
	f.mu.Lock()
	f.sent = append(f.sent, sentCommand{ID: id, Text: text})
	reply := f.autoReply
	f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	if reply != nil {
		act, errEv := reply(id, text)
		if act != nil {
			go f.onAction(*act)
		}
		if errEv != nil {
			go f.onError(*errEv)
		}
	}
	return nil
}

func (f *fakeChannel) Disconnect() {
	f.mu.Lock()
	f.disconnects++
	f.mu.Unlock()
}

func (f *fakeChannel) OnAction(fn func(channel.ActionEvent)) { f.onAction = fn }
func (f *fakeChannel) OnError(fn func(channel.ErrorEvent))   { f.onError = fn }

func (f *fakeChannel) Sent() []sentCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCommand(nil), f.sent...)
}

func (f *fakeChannel) Disconnects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

func startStub(t *testing.T, cfg dummy.ServerConfig) string {
	t.Helper()
	srv := httptest.NewServer(dummy.Handler(cfg))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}
