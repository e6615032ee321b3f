package dummy

import "strings"

// Reply is what the stub decides for one transcript.
type Reply struct {
	Category  string
	Action    string
	Direction string
	Feedback  string
}

type rule struct {
	phrases   []string
	direction string
	feedback  string
}

type category struct {
	name   string
	action string
	rules  []rule
}

// Categories are checked in order, and within a category rules are checked in
// order, so "too dark" must come before "dark" and identity before emergency.
var table = []category{
	{
		name:   "identity",
		action: "show_identity",
		rules: []rule{
			{phrases: []string{"who am i", "my name", "identity", "where do i live", "emergency contact"},
				feedback: "Here is your information"},
		},
	},
	{
		name:   "contrast",
		action: "adjust_contrast",
		rules: []rule{
			{phrases: []string{"too dark", "brighter", "light mode", "day mode"},
				direction: "light", feedback: "Switching to light mode"},
			{phrases: []string{"dark", "too bright", "night mode"},
				direction: "dark", feedback: "Switching to dark mode"},
		},
	},
	{
		name:   "text_size",
		action: "adjust_text",
		rules: []rule{
			{phrases: []string{"smaller", "decrease", "too big"},
				direction: "decrease", feedback: "Reducing text size for compact view"},
			{phrases: []string{"bigger", "increase", "too small", "barely read", "larger"},
				direction: "increase", feedback: "Increasing text size for better readability"},
		},
	},
	{
		name:   "emergency",
		action: "trigger_emergency",
		rules: []rule{
			{phrases: []string{"help", "emergency", "danger"},
				feedback: "Contacting your caregiver"},
		},
	},
}

// Classify matches a transcript against the keyword table by substring
// containment. ok is false when nothing matches.
func Classify(transcript string) (Reply, bool) {
	t := strings.ToLower(strings.TrimSpace(transcript))
	if t == "" {
		return Reply{}, false
	}
	for _, c := range table {
		for _, r := range c.rules {
			for _, p := range r.phrases {
				if strings.Contains(t, p) {
					return Reply{
						Category:  c.name,
						Action:    c.action,
						Direction: r.direction,
						Feedback:  r.feedback,
					}, true
				}
			}
		}
	}
	return Reply{}, false
}
