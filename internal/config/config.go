// Package config loads process configuration for the multistore command from
// the environment. Command-line flags override these values.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Flow token modes.
const (
	FlowTokensUUIDv7     = "uuidv7"
	FlowTokensSequential = "sequential"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config controls logging, tracing, journaling, and flow token generation.
type Config struct {
	LogLevel   string `env:"MULTISTORE_LOG_LEVEL"   envDefault:"warn"`
	LogFormat  string `env:"MULTISTORE_LOG_FORMAT"  envDefault:"text"`
	Journal    string `env:"MULTISTORE_JOURNAL"`
	FlowTokens string `env:"MULTISTORE_FLOW_TOKENS" envDefault:"uuidv7"`

	// OTelEndpoint is an OTLP/HTTP collector URL. Empty disables tracing.
	OTelEndpoint string `env:"MULTISTORE_OTEL_ENDPOINT"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
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

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: want %q or %q", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	if c.OTelEndpoint != "" {
		u, err := url.Parse(c.OTelEndpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid otel endpoint %q: want an absolute URL", c.OTelEndpoint)
		}
	}
	switch strings.ToLower(c.FlowTokens) {
	case FlowTokensUUIDv7, FlowTokensSequential:
	default:
		return fmt.Errorf("invalid flow token mode %q: want %q or %q", c.FlowTokens, FlowTokensUUIDv7, FlowTokensSequential)
	}
	return nil
}

// Tracing reports whether updater spans should be exported.
func (c Config) Tracing() bool {
	return c.OTelEndpoint != ""
}

// Level returns the configured slog level. Invalid values fall back to warn.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func NewLogger(w io.Writer, c Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if strings.EqualFold(c.LogFormat, LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
