// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     config
// Description: Configuration loading from TOML or YAML files with defaults
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "MLANG_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Watch   WatchConfig   `toml:"watch" yaml:"watch"`

	// Source is the file the configuration was loaded from, empty for defaults
	Source string `toml:"-" yaml:"-"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	// LogFile receives a copy of every log line when set
	LogFile string `toml:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// ParserConfig holds front end limits
type ParserConfig struct {
	MaxInputLength int `toml:"max_input_length" yaml:"max_input_length"`
	MaxDepth       int `toml:"max_depth" yaml:"max_depth"`
}

// OutputConfig controls how the CLI prints trees and diagnostics
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"` // "tree" or "compact"
	Color  bool   `toml:"color" yaml:"color"`
}

// HistoryConfig holds parse history settings
type HistoryConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Output formats
const (
	OutputTree    = "tree"
	OutputCompact = "compact"
)

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got %s", value.Tag)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:  "warn",
			LogFormat: "console",
		},
		Parser: ParserConfig{
			MaxInputLength: 64 * 1024,
			MaxDepth:       256,
		},
		Output: OutputConfig{
			Format: OutputTree,
			Color:  true,
		},
		History: HistoryConfig{
			Enabled:   true,
			Path:      "~/.mlang/history.db",
			Retention: Duration{720 * time.Hour},
		},
		Watch: WatchConfig{
			Debounce: Duration{250 * time.Millisecond},
		},
	}
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mlerror.Newf("config file not found: %s", path).
				WithCode(mlerror.CodeNotFound).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, mlerror.Wrap(err, "failed to read config").
			WithCode(mlerror.CodeIOError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, parseError(err, path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, parseError(err, path)
		}
	default:
		return nil, mlerror.Newf("unsupported config format: %s", filepath.Ext(path)).
			WithCode(mlerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.Source = path

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables and ~ in paths
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseError(err error, path string) error {
	return mlerror.Wrap(err, "failed to parse config").
		WithCode(mlerror.CodeConfigError).
		WithOperation("config.Load").
		WithDetail("path", path)
}

// DefaultPaths returns the locations searched when MLANG_CONFIG is unset
func DefaultPaths() []string {
	return []string{
		"./mlang.toml",
		"./mlang.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/mlang/config.toml"),
	}
}

// LoadFromEnv loads configuration from the MLANG_CONFIG environment
// variable, then from the default locations. Without any file the built-in
// defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	cfg := Default()
	cfg.expandEnvVars()
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	d := Default()

	// General
	if c.General.LogLevel == "" {
		c.General.LogLevel = d.General.LogLevel
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = d.General.LogFormat
	}

	// Parser
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = d.Parser.MaxInputLength
	}
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = d.Parser.MaxDepth
	}

	// Output
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}

	// History
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention = d.History.Retention
	}

	// Watch
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.History.Path = expandPath(c.History.Path)
	if c.General.LogFile != "" {
		c.General.LogFile = expandPath(c.General.LogFile)
	}
}

func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	invalid := func(key string, value interface{}, reason string) error {
		return mlerror.Newf("invalid %s: %v (%s)", key, value, reason).
			WithCode(mlerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("key", key).
			WithDetail("source", c.Source)
	}

	if _, err := mllog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel, "trace, debug, info, warn, error or fatal")
	}
	if _, err := mllog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("general.log_format", c.General.LogFormat, "json, text, console or logfmt")
	}
	if c.Parser.MaxInputLength < 0 {
		return invalid("parser.max_input_length", c.Parser.MaxInputLength, "must not be negative")
	}
	if c.Parser.MaxDepth < 0 {
		return invalid("parser.max_depth", c.Parser.MaxDepth, "must not be negative")
	}
	if c.Output.Format != OutputTree && c.Output.Format != OutputCompact {
		return invalid("output.format", c.Output.Format, "tree or compact")
	}
	if c.History.Retention.Duration < 0 {
		return invalid("history.retention", c.History.Retention, "must not be negative")
	}
	if c.Watch.Debounce.Duration < 0 {
		return invalid("watch.debounce", c.Watch.Debounce, "must not be negative")
	}
	return nil
}

// Write encodes the configuration as "toml" or "yaml"
func (c *Config) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "toml", "":
		return toml.NewEncoder(w).Encode(c)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return mlerror.Newf("unsupported config format: %s", format).
			WithCode(mlerror.CodeInvalidInput).
			WithOperation("config.Write")
	}
}
