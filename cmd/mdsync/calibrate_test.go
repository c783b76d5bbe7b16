package main

// Notes:
// - printCalibration: we test the summary table and the config snippet,
//   and that the snippet loads back as a valid config.
// - pageContent: we test that both panes get the document.
// - runCalibrate with a browser is covered by the integration tests in
//   internal/browser; here we only test the paths that fail before launch.
// These are acceptable gaps: Chrome is not available in unit tests.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdsync/internal/calibrate"
	"github.com/alnah/go-mdsync/internal/config"
)

// ---------------------------------------------------------------------------
// TestPrintCalibration - Text report and config snippet
// ---------------------------------------------------------------------------

func TestPrintCalibration(t *testing.T) {
	t.Parallel()

	rec := calibrate.Recommendation{SuppressDelay: 40 * time.Millisecond, IdleWindow: 90 * time.Millisecond}
	r := &calibrateResult{
		Document: "doc.md", Pane: "preview", Samples: 50,
		Min: "8ms", Median: "16ms", P95: "17ms", P99: "20ms", Max: "33ms",
		SuppressDelay: "40ms", IdleWindow: "90ms",
		Verify: &verifyResult{EditorReports: 30, PreviewWrites: 30, PreviewSuppress: 30, OK: true},
	}

	var buf bytes.Buffer
	if err := printCalibration(&buf, r, rec, 0.5); err != nil {
		t.Fatalf("printCalibration() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"doc.md (preview pane, 50 samples)",
		"median 16ms, p95 17ms",
		"suppress 40ms, idle 90ms",
		"verify     ok",
		"Add to your config:",
		"suppressDelay: 40ms",
		"idleWindow: 90ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// The snippet is a loadable config.
	snippet := out[strings.Index(out, "sync:"):]
	path := filepath.Join(t.TempDir(), "calibrated.yaml")
	if err := os.WriteFile(path, []byte(snippet), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(snippet) error: %v", err)
	}
	if cfg.SuppressDelay() != rec.SuppressDelay || cfg.IdleWindow() != rec.IdleWindow {
		t.Errorf("loaded %v/%v, want %v/%v", cfg.SuppressDelay(), cfg.IdleWindow(), rec.SuppressDelay, rec.IdleWindow)
	}
}

func TestPrintCalibration_VerifyFailed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &calibrateResult{Verify: &verifyResult{PreviewReports: 2}}
	if err := printCalibration(&buf, r, calibrate.Recommendation{}, 0.5); err != nil {
		t.Fatalf("printCalibration() error: %v", err)
	}
	if !strings.Contains(buf.String(), "FAILED") {
		t.Errorf("output missing FAILED\n%s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestPageContent - Browser pane content
// ---------------------------------------------------------------------------

func TestPageContent(t *testing.T) {
	t.Parallel()

	src := []byte("# Title\n\n```go\nfunc main() {}\n```\n")
	c, err := pageContent(context.Background(), "/docs/guide.md", src, true)
	if err != nil {
		t.Fatalf("pageContent() error: %v", err)
	}
	if c.Title != "guide.md" {
		t.Errorf("Title = %q, want guide.md", c.Title)
	}
	if c.Editor != string(src) {
		t.Errorf("Editor = %q, want raw source", c.Editor)
	}
	if !strings.Contains(c.PreviewHTML, "<h1") {
		t.Errorf("PreviewHTML = %q, want a heading", c.PreviewHTML)
	}
	if c.CodeCSS == "" {
		t.Error("CodeCSS is empty")
	}
}

// ---------------------------------------------------------------------------
// TestRunCalibrate_BeforeLaunch - Validation ahead of the browser
// ---------------------------------------------------------------------------

func TestRunCalibrate_BeforeLaunch(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "doc.md", "# Title\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"too many samples", []string{"-n", "20000", doc}, ExitUsage},
		{"timeout too short", []string{"--timeout", "10ms", doc}, ExitUsage},
		{"no document", nil, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv()
			err := runCalibrate(context.Background(), tt.args, env)
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err %v)\nstderr: %s", got, tt.wantCode, err, stderr.String())
			}
		})
	}
}
