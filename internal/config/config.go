package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdsync/internal/fileutil"
	"github.com/alnah/go-mdsync/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrOutOfRange      = errors.New("value out of range")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// appDir is the directory name under the user config directory.
const appDir = "go-mdsync"

// Bounds for timing values. Below the minimum a host cannot dispatch a
// scroll event in time; above the maximum sync feels detached.
const (
	MinDelay = time.Millisecond
	MaxDelay = 2 * time.Second
)

// Bounds for pane settings.
const (
	MinPreviewWidth  = 20
	MaxPreviewWidth  = 400
	MaxEchoTolerance = 50.0
	MaxSamples       = 10000
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds all configuration for sync sessions and the CLI.
type Config struct {
	Sync      SyncConfig      `yaml:"sync"`
	Editor    EditorConfig    `yaml:"editor"`
	Preview   PreviewConfig   `yaml:"preview"`
	View      ViewConfig      `yaml:"view"`
	Replay    ReplayConfig    `yaml:"replay"`
	Calibrate CalibrateConfig `yaml:"calibrate"`
}

// SyncConfig defines scroll-sync timings.
type SyncConfig struct {
	SuppressDelay string  `yaml:"suppressDelay"` // e.g. "50ms"
	IdleWindow    string  `yaml:"idleWindow"`    // e.g. "100ms"
	EchoTolerance float64 `yaml:"echoTolerance"` // pane units
}

// EditorConfig defines the raw-text pane.
type EditorConfig struct {
	LineNumbers bool `yaml:"lineNumbers"`
}

// PreviewConfig defines the rendered pane.
type PreviewConfig struct {
	Width int `yaml:"width"` // wrap width in columns (0 = pane width)
}

// ViewConfig defines the terminal view.
type ViewConfig struct {
	Theme string `yaml:"theme"` // "light" or "dark"
	Watch bool   `yaml:"watch"` // reload on file change
}

// ReplayConfig defines trace replay defaults.
type ReplayConfig struct {
	EchoLatency string `yaml:"echoLatency"` // simulated scroll-event dispatch delay
}

// CalibrateConfig defines the browser calibration run.
type CalibrateConfig struct {
	Samples int    `yaml:"samples"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			SuppressDelay: "50ms",
			IdleWindow:    "100ms",
			EchoTolerance: 0.5,
		},
		Editor:    EditorConfig{LineNumbers: true},
		Preview:   PreviewConfig{Width: 0},
		View:      ViewConfig{Theme: ThemeLight, Watch: false},
		Replay:    ReplayConfig{EchoLatency: "16ms"},
		Calibrate: CalibrateConfig{Samples: 50, Timeout: "30s"},
	}
}

// Validate checks every field. Called by LoadConfig, and available for
// callers that build a Config by hand or merge flags into one.
func (c *Config) Validate() error {
	if _, err := parseDelay("sync.suppressDelay", c.Sync.SuppressDelay); err != nil {
		return err
	}
	if _, err := parseDelay("sync.idleWindow", c.Sync.IdleWindow); err != nil {
		return err
	}
	if c.Sync.EchoTolerance < 0 || c.Sync.EchoTolerance > MaxEchoTolerance {
		return fmt.Errorf("%w: sync.echoTolerance must be between 0 and %.0f, got %.2f",
			ErrOutOfRange, MaxEchoTolerance, c.Sync.EchoTolerance)
	}

	if c.Preview.Width != 0 && (c.Preview.Width < MinPreviewWidth || c.Preview.Width > MaxPreviewWidth) {
		return fmt.Errorf("%w: preview.width must be 0 or between %d and %d, got %d",
			ErrOutOfRange, MinPreviewWidth, MaxPreviewWidth, c.Preview.Width)
	}

	switch strings.ToLower(c.View.Theme) {
	case "", ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: %q (must be light or dark)", ErrInvalidTheme, c.View.Theme)
	}

	if c.Replay.EchoLatency != "" {
		if _, err := parseDuration("replay.echoLatency", c.Replay.EchoLatency, 0, MaxDelay); err != nil {
			return err
		}
	}

	if c.Calibrate.Samples < 0 || c.Calibrate.Samples > MaxSamples {
		return fmt.Errorf("%w: calibrate.samples must be between 0 and %d, got %d",
			ErrOutOfRange, MaxSamples, c.Calibrate.Samples)
	}
	if c.Calibrate.Timeout != "" {
		if _, err := parseDuration("calibrate.timeout", c.Calibrate.Timeout, time.Second, time.Hour); err != nil {
			return err
		}
	}

	return nil
}

// SuppressDelay returns the parsed suppression delay.
// Call after Validate; an invalid value yields the default.
func (c *Config) SuppressDelay() time.Duration {
	return durationOr(c.Sync.SuppressDelay, 50*time.Millisecond)
}

// IdleWindow returns the parsed idle window.
func (c *Config) IdleWindow() time.Duration {
	return durationOr(c.Sync.IdleWindow, 100*time.Millisecond)
}

// EchoLatency returns the parsed replay echo latency.
func (c *Config) EchoLatency() time.Duration {
	return durationOr(c.Replay.EchoLatency, 16*time.Millisecond)
}

// CalibrateTimeout returns the parsed calibration timeout.
func (c *Config) CalibrateTimeout() time.Duration {
	return durationOr(c.Calibrate.Timeout, 30*time.Second)
}

// Dark reports whether the dark theme is selected.
func (c *Config) Dark() bool {
	return strings.EqualFold(c.View.Theme, ThemeDark)
}

func parseDelay(field, value string) (time.Duration, error) {
	return parseDuration(field, value, MinDelay, MaxDelay)
}

func parseDuration(field, value string, lo, hi time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q", ErrInvalidDuration, field, value)
	}
	if d < lo || d > hi {
		return 0, fmt.Errorf("%w: %s must be between %v and %v, got %v", ErrOutOfRange, field, lo, hi, d)
	}
	return d, nil
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory first, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
