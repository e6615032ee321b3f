// Package cases holds the command tables the harness runs by default and
// loads custom ones from YAML.
package cases

import "voiceq/internal/runner"

// Positive are commands the assistant must map to an action.
var Positive = []runner.TestCase{
	// Contrast
	{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"},
	{Command: "make it darker", Action: "adjust_contrast", Direction: "dark"},
	{Command: "too bright", Action: "adjust_contrast", Direction: "dark"},
	{Command: "night mode", Action: "adjust_contrast", Direction: "dark"},
	{Command: "light mode", Action: "adjust_contrast", Direction: "light"},
	{Command: "make it brighter", Action: "adjust_contrast", Direction: "light"},
	{Command: "too dark", Action: "adjust_contrast", Direction: "light"},
	{Command: "day mode", Action: "adjust_contrast", Direction: "light"},

	// Text size
	{Command: "bigger text", Action: "adjust_text", Direction: "increase"},
	{Command: "increase text size", Action: "adjust_text", Direction: "increase"},
	{Command: "make text bigger", Action: "adjust_text", Direction: "increase"},
	{Command: "text is too small", Action: "adjust_text", Direction: "increase"},
	{Command: "smaller text", Action: "adjust_text", Direction: "decrease"},
	{Command: "decrease text size", Action: "adjust_text", Direction: "decrease"},
	{Command: "make text smaller", Action: "adjust_text", Direction: "decrease"},
	{Command: "text is too big", Action: "adjust_text", Direction: "decrease"},

	// Identity
	{Command: "who am i", Action: "show_identity"},
	{Command: "what is my name", Action: "show_identity"},
	{Command: "show my identity", Action: "show_identity"},
	{Command: "where do i live", Action: "show_identity"},

	// Phrasings that only contain a keyword
	{Command: "switch to dark", Action: "adjust_contrast", Direction: "dark"},
	{Command: "i can barely read this", Action: "adjust_text", Direction: "increase"},
	{Command: "the screen is too bright for me", Action: "adjust_contrast", Direction: "dark"},
	{Command: "my emergency contact", Action: "show_identity"},
}

// Negative are commands outside the assistant's scope; the expected outcome
// is a service error.
var Negative = []runner.TestCase{
	{Command: "what time is it", Action: runner.ActualError},
	{Command: "call my daughter", Action: runner.ActualError},
	{Command: "play some music", Action: runner.ActualError},
}

// All returns Positive followed by Negative.
func All() []runner.TestCase {
	out := make([]runner.TestCase, 0, len(Positive)+len(Negative))
	out = append(out, Positive...)
	return append(out, Negative...)
}

// Commands returns the command text of each case, in order.
func Commands(cs []runner.TestCase) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Command
	}
	return out
}
