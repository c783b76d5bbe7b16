package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-mdsync/internal/config"
)

// envConfig holds configuration from environment variables.
// Lets CI runs and shell profiles tune timings without a YAML file.
type envConfig struct {
	ConfigPath    string // MDSYNC_CONFIG: config file name or path
	SuppressDelay string // MDSYNC_SUPPRESS_DELAY: echo suppression window
	IdleWindow    string // MDSYNC_IDLE_WINDOW: idle reset window
	EchoLatency   string // MDSYNC_ECHO_LATENCY: replay echo latency
	Theme         string // MDSYNC_THEME: light, dark
	Timeout       string // MDSYNC_TIMEOUT: calibration time limit
	Samples       int    // MDSYNC_SAMPLES: calibration writes
}

// knownEnvVars lists valid MDSYNC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDSYNC_CONFIG":         true,
	"MDSYNC_SUPPRESS_DELAY": true,
	"MDSYNC_IDLE_WINDOW":    true,
	"MDSYNC_ECHO_LATENCY":   true,
	"MDSYNC_THEME":          true,
	"MDSYNC_TIMEOUT":        true,
	"MDSYNC_SAMPLES":        true,
	"MDSYNC_CONTAINER":      true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("MDSYNC_CONFIG"),
		SuppressDelay: os.Getenv("MDSYNC_SUPPRESS_DELAY"),
		IdleWindow:    os.Getenv("MDSYNC_IDLE_WINDOW"),
		EchoLatency:   os.Getenv("MDSYNC_ECHO_LATENCY"),
		Theme:         os.Getenv("MDSYNC_THEME"),
		Timeout:       os.Getenv("MDSYNC_TIMEOUT"),
	}

	// Parse int for samples; invalid values are ignored
	if samples := os.Getenv("MDSYNC_SAMPLES"); samples != "" {
		if n, err := strconv.Atoi(samples); err == nil && n > 0 {
			cfg.Samples = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDSYNC_* variables.
// Helps catch typos like MDSYNC_SUPRESS_DELAY.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDSYNC_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment variables over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards via syncFlags.mergeInto).
// Values are checked later by cfg.Validate.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SuppressDelay != "" {
		cfg.Sync.SuppressDelay = env.SuppressDelay
	}
	if env.IdleWindow != "" {
		cfg.Sync.IdleWindow = env.IdleWindow
	}
	if env.EchoLatency != "" {
		cfg.Replay.EchoLatency = env.EchoLatency
	}
	if env.Theme != "" {
		cfg.View.Theme = env.Theme
	}
	if env.Timeout != "" {
		cfg.Calibrate.Timeout = env.Timeout
	}
	if env.Samples > 0 {
		cfg.Calibrate.Samples = env.Samples
	}
}
