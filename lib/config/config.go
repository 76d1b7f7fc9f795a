// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when --config is not
// given.
const EnvironmentVariable = "MTXCLI_CONFIG"

// LogFormat selects the program logger's output encoding.
type LogFormat string

const (
	// LogFormatAuto picks text on a terminal and JSON otherwise.
	LogFormatAuto LogFormat = "auto"
	// LogFormatText forces slog's text handler.
	LogFormatText LogFormat = "text"
	// LogFormatJSON forces slog's JSON handler.
	LogFormatJSON LogFormat = "json"
)

// Config is the mtxcli configuration.
type Config struct {
	// StoreDir is the session store directory. Empty means the platform
	// per-application directory (see AppDir).
	StoreDir string `yaml:"store_dir"`

	// DefaultServer is the homeserver used when the configured user
	// has no server part.
	// Default: https://matrix.org
	DefaultServer string `yaml:"default_server"`

	// SyncTimeout is the long-poll budget handed to the server on each
	// sync.
	// Default: 300ms
	SyncTimeout string `yaml:"sync_timeout"`

	// RequestTimeout bounds every HTTP request to the homeserver,
	// including the sync long-poll.
	// Default: 30s
	RequestTimeout string `yaml:"request_timeout"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of auto, text, json.
	// Default: auto
	LogFormat LogFormat `yaml:"log_format"`

	// FilterFile names a JSON-with-comments sync filter definition.
	// Empty means the built-in filter.
	FilterFile string `yaml:"filter_file"`

	// Markdown renders outgoing messages as markdown into the HTML
	// formatted body.
	// Default: true
	Markdown bool `yaml:"markdown"`
}

// Default returns the default configuration. Loaded files are merged
// over it.
func Default() *Config {
	return &Config{
		DefaultServer:  "https://matrix.org",
		SyncTimeout:    "300ms",
		RequestTimeout: "30s",
		LogLevel:       "info",
		LogFormat:      LogFormatAuto,
		Markdown:       true,
	}
}

// Load loads configuration from the file named by MTXCLI_CONFIG, or
// returns Default when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveStoreDir returns StoreDir when set, otherwise the platform
// per-application directory.
func (c *Config) ResolveStoreDir() string {
	if c.StoreDir != "" {
		return c.StoreDir
	}
	return AppDir()
}

// SyncTimeoutDuration returns SyncTimeout parsed. Validate guarantees
// it parses.
func (c *Config) SyncTimeoutDuration() time.Duration {
	duration, _ := time.ParseDuration(c.SyncTimeout)
	return duration
}

// RequestTimeoutDuration returns RequestTimeout parsed. Validate
// guarantees it parses.
func (c *Config) RequestTimeoutDuration() time.Duration {
	duration, _ := time.ParseDuration(c.RequestTimeout)
	return duration
}

// Level returns LogLevel as an slog level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) expandVariables() {
	c.StoreDir = expandVars(c.StoreDir)
	c.FilterFile = expandVars(c.FilterFile)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.DefaultServer == "" {
		errs = append(errs, fmt.Errorf("default_server is required"))
	}
	if duration, err := time.ParseDuration(c.SyncTimeout); err != nil {
		errs = append(errs, fmt.Errorf("sync_timeout: %w", err))
	} else if duration < 0 {
		errs = append(errs, fmt.Errorf("sync_timeout must not be negative"))
	}
	if duration, err := time.ParseDuration(c.RequestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("request_timeout: %w", err))
	} else if duration <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive"))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log_format must be auto, text, or json; got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
