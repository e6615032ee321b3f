package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("url", "http://localhost:5000")
	viper.Set("transport", "http")
	viper.Set("events.command", "voice_command")
	viper.Set("events.action", "ui_update")
	viper.Set("events.error", "processing_error")
	viper.Set("timeout", "3s")
	viper.Set("stagger", "100ms")
	viper.Set("workers", 8)
	viper.Set("seed", 42)

	cfg := loadConfig()
	assert.Equal(t, "http://localhost:5000", cfg.URL)
	assert.Equal(t, "http", cfg.Transport)
	assert.Equal(t, "ui_update", cfg.Events.Action)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Stagger)
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.Equal(t, int64(42), cfg.Seed)

	// Untouched values keep their defaults.
	assert.Equal(t, time.Second, cfg.ThinkTime)
	assert.Equal(t, 500*time.Millisecond, cfg.InterTestDelay)
}

func TestCaseSetDefaultsToBuiltin(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	set, err := caseSet()
	assert.NoError(t, err)
	assert.Len(t, set.Cases, 27)
	assert.Len(t, set.Pool, 24)
}

func TestWriteRunFiles(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, writeRunFiles(dir, "", 1, nil))
	assert.NoError(t, writeRunFiles(dir, "run", 2, nil))
	assert.FileExists(t, dir+"/run_2c.csv")
	assert.FileExists(t, dir+"/run_2c_timeline.json")
}
