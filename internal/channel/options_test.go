package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDefaults(t *testing.T) {
	ws := Options{}.withDefaults()
	assert.Equal(t, "ws", ws.Transport)
	assert.Equal(t, "text", ws.TextKey)
	assert.Equal(t, DefaultEvents, ws.Events)

	h := Options{Transport: "http"}.withDefaults()
	assert.Equal(t, "command", h.TextKey)
	assert.Equal(t, "/ai-intent", h.Path)
}
