// Package config loads adapter configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete adapter configuration. It is resolved once at
// startup and treated as immutable for the life of every tool
// invocation that receives it.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	HTTP    HTTPConfig    `yaml:"http"`
	Polling PollingConfig `yaml:"polling"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig locates the Spaces backend API.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HTTPConfig configures the HTTP transport shim.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// PollParams bound one completion poll loop.
type PollParams struct {
	MaxAttempts     int `yaml:"max_attempts"`
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Interval returns the tick interval as a duration.
func (p PollParams) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// PollingConfig carries the per-operation poll budgets. Transcription
// gets double the attempts and interval of downloads because those
// jobs routinely run minutes, not seconds.
type PollingConfig struct {
	Download      PollParams `yaml:"download"`
	Transcription PollParams `yaml:"transcription"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level name onto a slog.Level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the built-in configuration: no backend URL (must be
// supplied), 30s request timeout, 60x5s download polling, 120x10s
// transcription polling.
func Default() Config {
	return Config{
		Backend: BackendConfig{TimeoutSeconds: 30},
		HTTP:    HTTPConfig{Addr: ":8735"},
		Polling: PollingConfig{
			Download:      PollParams{MaxAttempts: 60, IntervalSeconds: 5},
			Transcription: PollParams{MaxAttempts: 120, IntervalSeconds: 10},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load resolves configuration: defaults, then the YAML file at path if
// path is non-empty, then environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SPACES_API_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("SPACES_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SPACES_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("SPACES_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPACES_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate rejects configurations the adapter cannot run with.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required (set SPACES_API_URL)")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout_seconds must be positive, got %d", c.Backend.TimeoutSeconds)
	}
	if c.Polling.Download.MaxAttempts <= 0 || c.Polling.Transcription.MaxAttempts <= 0 {
		return fmt.Errorf("polling max_attempts must be positive")
	}
	if c.Polling.Download.IntervalSeconds <= 0 || c.Polling.Transcription.IntervalSeconds <= 0 {
		return fmt.Errorf("polling interval_seconds must be positive")
	}

	return nil
}

// NewLogger builds the process logger. Output goes to stderr: on the
// stdio transport, stdout carries JSON-RPC frames.
func NewLogger(c LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}

	var handler slog.Handler
	if strings.ToLower(c.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
