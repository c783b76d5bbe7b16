package main

// Notes:
// - exitCodeFor: we test the sentinel errors of every package the CLI
//   calls, plus wrapped errors to verify the errors.Is chain.
// - Exit code constants: we verify Unix conventions and that custom codes
//   stay below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-mdsync/internal/browser"
	"github.com/alnah/go-mdsync/internal/calibrate"
	"github.com/alnah/go-mdsync/internal/config"
	"github.com/alnah/go-mdsync/internal/fileutil"
	"github.com/alnah/go-mdsync/internal/replay"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", browser.ErrBrowserConnect, ExitBrowser},
		{"page create", browser.ErrPageCreate, ExitBrowser},
		{"page load", browser.ErrPageLoad, ExitBrowser},
		{"script", browser.ErrScript, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", browser.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"file too large", fileutil.ErrFileTooLarge, ExitIO},
		{"not regular", fileutil.ErrNotRegular, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid pane", ErrInvalidPane, ExitUsage},
		{"no terminal", ErrNoTerminal, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"invalid duration", config.ErrInvalidDuration, ExitUsage},
		{"out of range", config.ErrOutOfRange, ExitUsage},
		{"invalid theme", config.ErrInvalidTheme, ExitUsage},
		{"invalid trace", replay.ErrInvalidTrace, ExitUsage},
		{"not scrollable", browser.ErrNotScrollable, ExitUsage},
		{"no samples", calibrate.ErrNoSamples, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"feedback loop", ErrFeedbackLoop, ExitGeneral},
		{"unknown error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// A read error wraps both ErrReadMarkdown and the os error; I/O wins over
// the usage check for the extension.
func TestExitCodeFor_ReadMarkdownNotExist(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", ErrReadMarkdown, os.ErrNotExist)
	if got := exitCodeFor(err); got != ExitIO {
		t.Errorf("exitCodeFor() = %d, want %d", got, ExitIO)
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitBrowser}
	seen := make(map[int]bool)
	for _, c := range codes {
		if c >= 126 {
			t.Errorf("exit code %d collides with shell-reserved range", c)
		}
		if seen[c] {
			t.Errorf("duplicate exit code %d", c)
		}
		seen[c] = true
	}
}
