package cases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceq/internal/dummy"
	"voiceq/internal/runner"
)

func TestBuiltinTables(t *testing.T) {
	assert.Len(t, Positive, 24)
	assert.Len(t, Negative, 3)
	assert.Len(t, All(), 27)

	b := Builtin()
	assert.Len(t, b.Pool, 24)
	assert.Equal(t, "dark mode", b.Pool[0])
}

// The stub service must agree with every built-in expectation.
func TestBuiltinMatchesStub(t *testing.T) {
	for _, tc := range Positive {
		reply, ok := dummy.Classify(tc.Command)
		require.True(t, ok, tc.Command)
		assert.Equal(t, tc.Action, reply.Action, tc.Command)
		assert.Equal(t, tc.Direction, reply.Direction, tc.Command)
	}
	for _, tc := range Negative {
		_, ok := dummy.Classify(tc.Command)
		assert.False(t, ok, tc.Command)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
cases:
  - command: dark mode
    action: adjust_contrast
    direction: dark
  - command: who am i
    action: show_identity
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []runner.TestCase{
		{Command: "dark mode", Action: "adjust_contrast", Direction: "dark"},
		{Command: "who am i", Action: "show_identity"},
	}, s.Cases)
	assert.Equal(t, []string{"dark mode", "who am i"}, s.Pool)
}

func TestLoadPoolOnly(t *testing.T) {
	s, err := Load(writeFile(t, "pool:\n  - dark mode\n  - '{{randomChoice \"a\" \"b\"}}'\n"))
	require.NoError(t, err)
	assert.Empty(t, s.Cases)
	assert.Len(t, s.Pool, 2)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "cases: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "cases: []\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "cases:\n  - command: dark mode\n"))
	assert.Error(t, err)
}
