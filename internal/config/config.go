// Package config loads runtime settings for the action command from the
// environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Log output formats accepted by ACTION_LOG_FORMAT.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config stores resolved command settings.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `env:"ACTION_LOG_LEVEL" envDefault:"info"`
	// LogFormat selects the slog handler.
	LogFormat string `env:"ACTION_LOG_FORMAT" envDefault:"json"`
	// Timeout bounds one invocation including awaiting its result.
	Timeout time.Duration `env:"ACTION_TIMEOUT" envDefault:"10s"`
}

// Load reads settings from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFromMap reads settings from environ instead of the process environment.
func LoadFromMap(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}

	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks setting coherence.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("validate config: unsupported log format %q", c.LogFormat)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("validate config: timeout must be positive, got %s", c.Timeout)
	}

	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported level %q", c.LogLevel)
	}
}

// NewLogger builds the configured slog logger writing to w.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}

	options := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case LogFormatText:
		return slog.New(slog.NewTextHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("new logger: unsupported log format %q", c.LogFormat)
	}
}
