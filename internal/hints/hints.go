// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdsync/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI runner is driving the process.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserConnect returns hints for browser launch or connection errors
// during calibration.
func ForBrowserConnect() string {
	var hints []string

	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the calibration timeout.
func ForTimeout() string {
	return format("lower --samples or raise --timeout")
}

// ForConfigNotFound suggests --config or the user config file to create.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath(p), "/go-mdsync/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTerminal returns a hint when the interactive view has no terminal.
func ForTerminal() string {
	return format("view needs an interactive terminal; use 'mdsync replay' for scripted runs")
}

// ForTrace points at the trace format when a replay file fails to decode.
func ForTrace() string {
	return format("steps need 'at' (duration), 'pane' (editor|preview) and 'top'; see 'mdsync help replay'")
}

// filepath normalizes separators so the user config dir matches on Windows.
func filepath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
