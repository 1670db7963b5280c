// Package config loads the canvasd daemon configuration.
//
// Configuration is read from a single YAML file named by the --config flag or,
// when the flag is absent, the CANVASNET_CONFIG environment variable. With
// neither set the built-in defaults are used.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luciancaetano/canvasnet/internal/websocket"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "CANVASNET_CONFIG"

// Config is the daemon configuration.
type Config struct {
	// Addr is the listen address of the websocket server.
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// RateLimit limits inbound messages per connection.
	RateLimit *websocket.RateLimitConfig `yaml:"rate_limit"`

	// Canvases lists the canvases mounted at startup.
	Canvases []CanvasConfig `yaml:"canvases"`
}

// CanvasConfig describes one mounted canvas.
type CanvasConfig struct {
	ID         string            `yaml:"id"`
	Width      int               `yaml:"width"`
	Height     int               `yaml:"height"`
	Alt        string            `yaml:"alt"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Default returns the configuration used when no file is given: one 300x150
// canvas named "main" on :8080.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		LogLevel:  "info",
		RateLimit: websocket.DefaultRateLimitConfig(),
		Canvases: []CanvasConfig{
			{
				ID:     "main",
				Width:  300,
				Height: 150,
				Alt:    "Your browser does not support the canvas element",
			},
		},
	}
}

// Load reads the file at path, falling back to $CANVASNET_CONFIG and then to
// Default. The result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the file at path. Fields it omits keep their
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("addr is required"))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if c.RateLimit != nil && c.RateLimit.Enabled {
		if c.RateLimit.MessagesPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.messages_per_second must be positive"))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be positive"))
		}
	}

	seen := make(map[string]bool, len(c.Canvases))
	for i, cv := range c.Canvases {
		if cv.ID == "" {
			errs = append(errs, fmt.Errorf("canvases[%d].id is required", i))
		} else if seen[cv.ID] {
			errs = append(errs, fmt.Errorf("canvases[%d].id %q is duplicated", i, cv.ID))
		}
		seen[cv.ID] = true

		if cv.Width <= 0 || cv.Height <= 0 {
			errs = append(errs, fmt.Errorf("canvases[%d] must have positive width and height", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}
