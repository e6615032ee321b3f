package dummy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		transcript string
		action     string
		direction  string
	}{
		{"dark mode", "adjust_contrast", "dark"},
		{"too dark", "adjust_contrast", "light"},
		{"make it brighter", "adjust_contrast", "light"},
		{"The screen is too bright for me", "adjust_contrast", "dark"},
		{"text is too small", "adjust_text", "increase"},
		{"text is too big", "adjust_text", "decrease"},
		{"i can barely read this", "adjust_text", "increase"},
		{"who am i", "show_identity", ""},
		{"my emergency contact", "show_identity", ""},
		{"help me", "trigger_emergency", ""},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			reply, ok := Classify(tt.transcript)
			assert.True(t, ok)
			assert.Equal(t, tt.action, reply.Action)
			assert.Equal(t, tt.direction, reply.Direction)
		})
	}
}

func TestClassifyRejectsUnknown(t *testing.T) {
	for _, transcript := range []string{"what time is it", "call my daughter", "play some music", "", "xyz"} {
		_, ok := Classify(transcript)
		assert.False(t, ok, transcript)
	}
}
