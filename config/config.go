// Package config loads the application settings from YAML with
// IMPSTACK_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"os"
	"time"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults applied by Default and kept for keys missing from a file.
const (
	DefaultLogLevel      = "info"
	DefaultTickRate      = 16 * time.Millisecond
	DefaultAttachPerTick = 1
)

// Config holds the application settings.
type Config struct {
	Log    Log    `yaml:"log"`
	Tick   Tick   `yaml:"tick"`
	Visual Visual `yaml:"visual"`
	// Models maps model ids to asset paths for the model registry
	Models map[string]string `yaml:"models"`
}

// Log configures the zerolog logger.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Tick configures the system tick loop.
type Tick struct {
	Rate time.Duration `yaml:"rate"`
}

// Visual configures the VisualState.
type Visual struct {
	// AttachPerTick bounds how many queued nodes join the scene per update
	AttachPerTick int `yaml:"attach_per_tick"`
}

// envOverrides mirrors the settings that can be replaced from the environment.
type envOverrides struct {
	LogLevel      string `config:"IMPSTACK_LOG_LEVEL"`
	LogPretty     bool   `config:"IMPSTACK_LOG_PRETTY"`
	TickRate      string `config:"IMPSTACK_TICK_RATE"`
	AttachPerTick int    `config:"IMPSTACK_ATTACH_PER_TICK"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Log:    Log{Level: DefaultLogLevel},
		Tick:   Tick{Rate: DefaultTickRate},
		Visual: Visual{AttachPerTick: DefaultAttachPerTick},
		Models: map[string]string{},
	}
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "decode config")
	}
	if cfg.Models == nil {
		cfg.Models = map[string]string{}
	}
	return cfg, nil
}

// Load reads the YAML file at path, applies environment overrides and validates
// the result. An empty path loads the defaults.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "read config %s", path)
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, eris.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv replaces settings with the IMPSTACK_* variables that are set.
func (c *Config) ApplyEnv() error {
	env := envOverrides{
		LogLevel:      c.Log.Level,
		LogPretty:     c.Log.Pretty,
		TickRate:      c.Tick.Rate.String(),
		AttachPerTick: c.Visual.AttachPerTick,
	}
	if err := jlconfig.FromEnv().To(&env); err != nil {
		return eris.Wrap(err, "read environment")
	}

	rate, err := time.ParseDuration(env.TickRate)
	if err != nil {
		return eris.Wrapf(ErrInvalidConfig, "IMPSTACK_TICK_RATE %q: %v", env.TickRate, err)
	}

	c.Log.Level = env.LogLevel
	c.Log.Pretty = env.LogPretty
	c.Tick.Rate = rate
	c.Visual.AttachPerTick = env.AttachPerTick
	return nil
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrapf(ErrInvalidConfig, "log level %q", c.Log.Level)
	}
	if c.Tick.Rate <= 0 {
		return eris.Wrapf(ErrInvalidConfig, "tick rate %s must be positive", c.Tick.Rate)
	}
	if c.Visual.AttachPerTick < 1 {
		return eris.Wrapf(ErrInvalidConfig, "attach_per_tick %d must be at least 1", c.Visual.AttachPerTick)
	}
	for id, path := range c.Models {
		if id == "" || path == "" {
			return eris.Wrapf(ErrInvalidConfig, "model %q has empty id or path", id)
		}
	}
	return nil
}
