package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdsync/internal/browser"
	"github.com/alnah/go-mdsync/internal/calibrate"
	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/fileutil"
	"github.com/alnah/go-mdsync/internal/replay"
)

// Exit codes for the mdsync CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error, or a replay that looped
	ExitUsage   = 2 // Invalid flags, config, trace, or document
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, browser.ErrBrowserConnect) ||
		errors.Is(err, browser.ErrPageCreate) ||
		errors.Is(err, browser.ErrPageLoad) ||
		errors.Is(err, browser.ErrScript) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, fileutil.ErrFileTooLarge) ||
		errors.Is(err, fileutil.ErrNotRegular) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidPane) ||
		errors.Is(err, ErrNoTerminal) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidDuration) ||
		errors.Is(err, config.ErrOutOfRange) ||
		errors.Is(err, config.ErrInvalidTheme) ||
		errors.Is(err, replay.ErrInvalidTrace) ||
		errors.Is(err, browser.ErrNotScrollable) ||
		errors.Is(err, calibrate.ErrNoSamples) {
		return ExitUsage
	}

	return ExitGeneral
}
