package cases

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voiceq/internal/runner"
)

// Set is the on-disk case file:
//
//	cases:
//	  - command: dark mode
//	    action: adjust_contrast
//	    direction: dark
//	pool:
//	  - '{{randomChoice "dark mode" "night mode"}}'
type Set struct {
	Cases []runner.TestCase `yaml:"cases"`
	Pool  []string          `yaml:"pool"`
}

// Load reads a case file. An empty pool defaults to the case commands.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, err
	}

	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(s.Cases) == 0 && len(s.Pool) == 0 {
		return Set{}, errors.New("case file defines neither cases nor pool")
	}
	for i, c := range s.Cases {
		if c.Command == "" || c.Action == "" {
			return Set{}, fmt.Errorf("parse %s: case %d needs command and action", path, i)
		}
	}
	if len(s.Pool) == 0 {
		s.Pool = Commands(s.Cases)
	}
	return s, nil
}

// Builtin is the default Set.
func Builtin() Set {
	return Set{Cases: All(), Pool: Commands(Positive)}
}
