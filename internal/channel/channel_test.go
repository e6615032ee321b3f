package channel_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceq/internal/channel"
	"voiceq/internal/dummy"
	"voiceq/internal/logging"
)

func init() {
	logging.Discard()
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type recorder struct {
	actions chan channel.ActionEvent
	errors  chan channel.ErrorEvent
}

func listen(c channel.Channel) *recorder {
	r := &recorder{
		actions: make(chan channel.ActionEvent, 4),
		errors:  make(chan channel.ErrorEvent, 4),
	}
	c.OnAction(func(ev channel.ActionEvent) { r.actions <- ev })
	c.OnError(func(ev channel.ErrorEvent) { r.errors <- ev })
	return r
}

func TestWSChannelRoundTrip(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	c := channel.NewWS(channel.Options{URL: wsURL(srv)})
	rec := listen(c)

	require.True(t, c.Connect(context.Background()))
	defer c.Disconnect()
	assert.True(t, c.Connected())

	require.NoError(t, c.Send("req-1", "dark mode"))
	select {
	case ev := <-rec.actions:
		assert.Equal(t, "req-1", ev.RequestID)
		assert.Equal(t, "adjust_contrast", ev.Action)
		assert.Equal(t, "dark", ev.Direction)
		assert.Equal(t, "dark mode", ev.Transcript)
	case <-time.After(2 * time.Second):
		t.Fatal("no action event")
	}

	require.NoError(t, c.Send("req-2", "xyz"))
	select {
	case ev := <-rec.errors:
		assert.Equal(t, "req-2", ev.RequestID)
		assert.Equal(t, "unrecognized", ev.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no error event")
	}
}

func TestWSChannelCustomEvents(t *testing.T) {
	events := channel.Events{Command: "voice_command", Action: "ui_update", Error: "processing_error"}
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{Events: events}))
	defer srv.Close()

	c := channel.NewWS(channel.Options{URL: wsURL(srv), Events: events, TextKey: "command"})
	rec := listen(c)
	require.True(t, c.Connect(context.Background()))
	defer c.Disconnect()

	require.NoError(t, c.Send("id", "bigger text"))
	select {
	case ev := <-rec.actions:
		assert.Equal(t, "adjust_text", ev.Action)
		assert.Equal(t, "increase", ev.Direction)
	case <-time.After(2 * time.Second):
		t.Fatal("no action event")
	}
}

func TestWSChannelConnectFailure(t *testing.T) {
	c := channel.NewWS(channel.Options{URL: "ws://127.0.0.1:1/ws", DialTimeout: 200 * time.Millisecond})
	assert.False(t, c.Connect(context.Background()))
	assert.ErrorIs(t, c.Send("id", "dark mode"), channel.ErrNotConnected)
	assert.NotPanics(t, c.Disconnect)
}

func TestWSChannelDisconnectIdempotent(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	c := channel.NewWS(channel.Options{URL: wsURL(srv)})
	assert.NotPanics(t, c.Disconnect)
	require.True(t, c.Connect(context.Background()))
	c.Disconnect()
	c.Disconnect()
	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.Send("id", "dark mode"), channel.ErrNotConnected)
}

func TestHTTPChannelRoundTrip(t *testing.T) {
	srv := httptest.NewServer(dummy.Handler(dummy.ServerConfig{}))
	defer srv.Close()

	c, err := channel.New(channel.Options{URL: srv.URL, Transport: "http"})
	require.NoError(t, err)
	rec := listen(c)

	require.True(t, c.Connect(context.Background()))
	defer c.Disconnect()

	require.NoError(t, c.Send("a", "make text smaller"))
	select {
	case ev := <-rec.actions:
		assert.Equal(t, "a", ev.RequestID)
		assert.Equal(t, "adjust_text", ev.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no action event")
	}

	require.NoError(t, c.Send("b", "play some music"))
	select {
	case ev := <-rec.errors:
		assert.Equal(t, "b", ev.RequestID)
		assert.Equal(t, "unrecognized", ev.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no error event")
	}
}

func TestHTTPChannelConnectFailure(t *testing.T) {
	c := channel.NewHTTP(channel.Options{URL: "http://127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	assert.False(t, c.Connect(context.Background()))
	assert.ErrorIs(t, c.Send("id", "dark mode"), channel.ErrNotConnected)
	c.Disconnect()
	c.Disconnect()
}

func TestNewRejectsUnknownTransport(t *testing.T) {
	_, err := channel.New(channel.Options{URL: "x", Transport: "carrier-pigeon"})
	assert.Error(t, err)
}
