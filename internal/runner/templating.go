package runner

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// TemplateEngine renders command pool entries. Plain commands pass through
// untouched; entries containing "{{" are parsed once and executed per draw.
type TemplateEngine struct {
	fileCache map[string][]string
	tmplCache map[string]*template.Template
	mu        sync.RWMutex
	funcMap   template.FuncMap

	rngMu sync.Mutex
	rng   *rand.Rand
}

// TemplateData is passed to the execution context
type TemplateData struct {
	ClientID  int
	RequestID string
}

// NewTemplateEngine initializes the engine and its functions. seed 0 uses the clock.
func NewTemplateEngine(seed int64) *TemplateEngine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &TemplateEngine{
		fileCache: make(map[string][]string),
		tmplCache: make(map[string]*template.Template),
		rng:       rand.New(rand.NewSource(seed)),
	}

	e.funcMap = template.FuncMap{
		"randomInt":    e.randomInt,
		"randomUUID":   e.randomUUID,
		"randomChoice": e.randomChoice,
		"randomLine":   e.randomLine,
		"uuid":         e.randomUUID, // Alias
	}

	return e
}

// Preprocess converts simple variables {{clientID}} to Go template syntax {{.ClientID}}
func (e *TemplateEngine) Preprocess(input string) string {
	s := input
	s = strings.ReplaceAll(s, "{{clientID}}", "{{.ClientID}}")
	s = strings.ReplaceAll(s, "{{requestID}}", "{{.RequestID}}")
	return s
}

// Parse creates a new template with the engine's functions
func (e *TemplateEngine) Parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(e.funcMap).Parse(e.Preprocess(text))
}

// Execute runs the template with data
func (e *TemplateEngine) Execute(t *template.Template, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render expands one pool entry.
func (e *TemplateEngine) Render(entry string, data TemplateData) (string, error) {
	if !strings.Contains(entry, "{{") {
		return entry, nil
	}

	e.mu.RLock()
	t, ok := e.tmplCache[entry]
	e.mu.RUnlock()
	if !ok {
		var err error
		t, err = e.Parse("command", entry)
		if err != nil {
			return "", fmt.Errorf("parse command template %q: %w", entry, err)
		}
		e.mu.Lock()
		e.tmplCache[entry] = t
		e.mu.Unlock()
	}

	out, err := e.Execute(t, data)
	if err != nil {
		return "", fmt.Errorf("render command template %q: %w", entry, err)
	}
	return strings.TrimSpace(out), nil
}

// Draw picks n pool entries uniformly with replacement.
func (e *TemplateEngine) Draw(pool []string, n int) []string {
	if len(pool) == 0 || n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = pool[e.intn(len(pool))]
	}
	return out
}

func (e *TemplateEngine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// --- Functions ---

func (e *TemplateEngine) randomInt(min, max int) int {
	if max <= min {
		return min
	}
	return e.intn(max-min) + min
}

func (e *TemplateEngine) randomUUID() string {
	return uuid.New().String()
}

func (e *TemplateEngine) randomChoice(choices ...string) string {
	if len(choices) == 0 {
		return ""
	}
	return choices[e.intn(len(choices))]
}

func (e *TemplateEngine) randomLine(filename string) (string, error) {
	e.mu.RLock()
	lines, ok := e.fileCache[filename]
	e.mu.RUnlock()

	if !ok {
		var err error
		if lines, err = e.loadLines(filename); err != nil {
			return "", err
		}
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[e.intn(len(lines))], nil
}

func (e *TemplateEngine) loadLines(filename string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if lines, ok := e.fileCache[filename]; ok {
		return lines, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", filename, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	var loaded []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			loaded = append(loaded, line)
		}
	}

	e.fileCache[filename] = loaded
	return loaded, nil
}
