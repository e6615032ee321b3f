package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlainCommand(t *testing.T) {
	e := NewTemplateEngine(1)
	out, err := e.Render("dark mode", TemplateData{})
	require.NoError(t, err)
	assert.Equal(t, "dark mode", out)
}

func TestRenderVariables(t *testing.T) {
	e := NewTemplateEngine(1)
	out, err := e.Render("client {{clientID}} says {{requestID}}", TemplateData{ClientID: 7, RequestID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "client 7 says abc", out)
}

func TestRenderRandomLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.txt")
	require.NoError(t, os.WriteFile(path, []byte("dark mode\n\nbigger text\n"), 0o644))

	e := NewTemplateEngine(1)
	for i := 0; i < 10; i++ {
		out, err := e.Render(`{{randomLine "`+path+`"}}`, TemplateData{})
		require.NoError(t, err)
		assert.Contains(t, []string{"dark mode", "bigger text"}, out)
	}
}

func TestRenderErrors(t *testing.T) {
	e := NewTemplateEngine(1)

	_, err := e.Render("{{randomLine", TemplateData{})
	assert.Error(t, err)

	_, err = e.Render(`{{randomLine "/does/not/exist"}}`, TemplateData{})
	assert.Error(t, err)
}

func TestDrawWithReplacement(t *testing.T) {
	e := NewTemplateEngine(42)
	pool := []string{"a", "b"}

	got := e.Draw(pool, 50)
	require.Len(t, got, 50)
	seen := map[string]bool{}
	for _, c := range got {
		seen[c] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)

	assert.Nil(t, e.Draw(nil, 3))
	assert.Nil(t, e.Draw(pool, 0))

	// Same seed, same draws.
	assert.Equal(t, NewTemplateEngine(7).Draw(pool, 10), NewTemplateEngine(7).Draw(pool, 10))
}
