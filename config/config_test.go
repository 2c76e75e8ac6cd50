package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/impstack/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 16*time.Millisecond, cfg.Tick.Rate)
	assert.Equal(t, 1, cfg.Visual.AttachPerTick)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`
log:
  level: debug
  pretty: true
tick:
  rate: 33ms
visual:
  attach_per_tick: 4
models:
  ship: assets/ship.yaml
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 33*time.Millisecond, cfg.Tick.Rate)
	assert.Equal(t, 4, cfg.Visual.AttachPerTick)
	assert.Equal(t, map[string]string{"ship": "assets/ship.yaml"}, cfg.Models)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, config.DefaultTickRate, cfg.Tick.Rate)
	assert.NotNil(t, cfg.Models)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := config.Parse([]byte("logging:\n  level: warn\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"zero rate", func(c *config.Config) { c.Tick.Rate = 0 }},
		{"zero attach", func(c *config.Config) { c.Visual.AttachPerTick = 0 }},
		{"empty model path", func(c *config.Config) { c.Models["ship"] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\ntick:\n  rate: 20ms\n"), 0o600))

	t.Setenv("IMPSTACK_LOG_LEVEL", "error")
	t.Setenv("IMPSTACK_ATTACH_PER_TICK", "3")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 20*time.Millisecond, cfg.Tick.Rate, "unset variables keep file values")
	assert.Equal(t, 3, cfg.Visual.AttachPerTick)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("IMPSTACK_TICK_RATE", "soon")

	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
