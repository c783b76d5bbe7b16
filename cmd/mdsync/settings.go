package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/fileutil"
	"github.com/alnah/go-mdsync/internal/hints"
)

// loadConfig resolves the configuration for a command: defaults, then the
// config file (--config or MDSYNC_CONFIG), then MDSYNC_* variables.
// Callers merge their own flags and call Validate.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
		if common.verbose {
			fmt.Fprintf(env.Stderr, "Config: %s\n", name)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// sessionOptions maps the sync section onto session options.
func sessionOptions(cfg *config.Config) []mdsync.Option {
	return []mdsync.Option{
		mdsync.WithSuppressDelay(cfg.SuppressDelay()),
		mdsync.WithIdleWindow(cfg.IdleWindow()),
		mdsync.WithEchoTolerance(cfg.Sync.EchoTolerance),
	}
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !looksLikeMarkdown(path) {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, filepath.Base(path))
	}
	return nil
}

// readMarkdown reads the document a command operates on.
func readMarkdown(path string) ([]byte, error) {
	if err := validateMarkdownExtension(path); err != nil {
		return nil, err
	}
	src, err := fileutil.ReadDocument(path, fileutil.MaxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return src, nil
}

// parsePane accepts the pane names used on the command line.
func parsePane(name string) (mdsync.Source, error) {
	pane, ok := mdsync.ParseSource(strings.ToLower(name))
	if !ok || pane == mdsync.None {
		return mdsync.None, fmt.Errorf("%w: %q", ErrInvalidPane, name)
	}
	return pane, nil
}

// oneArg checks that exactly one positional argument was given.
func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected one %s, got %d arguments", ErrUsage, what, len(args))
	}
	return args[0], nil
}
