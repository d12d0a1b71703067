// Package config loads bemjs settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bemjs/pkg/logger"
	"bemjs/pkg/vm"
)

// Console destinations besides a file path.
const (
	ConsoleStdout = "stdout"
	ConsoleStderr = "stderr"
)

// Config holds everything a run can be tuned with. Zero fields of a loaded
// file keep their defaults.
type Config struct {
	LogLevel     string         `yaml:"log_level"`
	Encoding     string         `yaml:"encoding"`
	Assertions   bool           `yaml:"assertions"`
	MaxCallDepth int            `yaml:"max_call_depth"`
	Globals      map[string]any `yaml:"globals"`
	// Console is where console.log writes: stdout, stderr or a file path.
	Console string `yaml:"console"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:     "warn",
		Encoding:     "utf-8",
		Assertions:   true,
		MaxCallDepth: vm.DefaultMaxCallDepth,
		Console:      ConsoleStdout,
	}
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads and validates the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", abs, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	logger.L().Debug("config loaded", "path", abs, "encoding", cfg.Encoding, "globals", len(cfg.Globals))
	return cfg, nil
}

// Decode parses YAML from r. Unknown keys are rejected and an empty
// document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs ValidationError
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if c.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative, got %d", c.MaxCallDepth))
	}
	for name := range c.Globals {
		if !isIdentifier(name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("globals: %q is not an identifier", name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// OpenConsole returns the writer for console output and a function that
// releases it.
func (c *Config) OpenConsole() (io.Writer, func() error, error) {
	switch c.Console {
	case "", ConsoleStdout:
		return os.Stdout, func() error { return nil }, nil
	case ConsoleStderr:
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.Console, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("config: console: %w", err)
	}
	return f, f.Close, nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		switch {
		case ch == '_' || ch == '$':
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
