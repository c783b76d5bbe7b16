// Package browser drives headless Chrome as a pair of real DOM scroll
// containers. It backs latency calibration and the browser integration
// tests of the sync core.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Sentinel errors for browser operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScript         = errors.New("page script failed")
	ErrNotScrollable  = errors.New("pane content fits in view")
)

// DefaultTimeout bounds page loads when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Options configures Launch.
type Options struct {
	// Bin is the Chrome binary. Empty uses ROD_BROWSER_BIN, then rod's
	// lookup and download.
	Bin string
	// Timeout bounds page loads.
	Timeout time.Duration
}

// Browser is a launched headless Chrome.
type Browser struct {
	launcher *launcher.Launcher
	rod      *rod.Browser
	timeout  time.Duration
}

// Launch starts Chrome and connects to it. Rod downloads Chromium on first
// run if none is found.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Context(ctx)

	bin := opts.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		killProcessGroup(l.PID())
		l.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Browser{launcher: l, rod: b, timeout: timeout}, nil
}

// noSandbox reports whether Chrome must run without its sandbox, as in CI
// runners and containers.
func noSandbox() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// Close shuts the browser down and kills its whole process tree.
func (b *Browser) Close() error {
	if b == nil || b.rod == nil {
		return nil
	}
	err := b.rod.Close()
	pid := b.launcher.PID()
	b.rod = nil
	// Renderer and GPU helpers survive a plain close on some platforms.
	killProcessGroup(pid)
	b.launcher.Cleanup()
	return err
}

// loadTimeout returns the time left before ctx's deadline, or the
// browser's default timeout.
func (b *Browser) loadTimeout(ctx context.Context) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return b.timeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}
