package browser

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ysmood/gson"
)

// ---------------------------------------------------------------------------
// TestPageHTML - Page Building
// ---------------------------------------------------------------------------

func TestPageHTML(t *testing.T) {
	t.Parallel()

	got, err := pageHTML(Content{
		Title:       "notes <draft>",
		Editor:      "# Title\n<script>alert(1)</script>\n",
		PreviewHTML: `<h1 id="title">Title</h1>`,
		CodeCSS:     ".chroma { color: red }",
	})
	if err != nil {
		t.Fatalf("pageHTML() error: %v", err)
	}

	for _, want := range []string{
		`<div id="editor" class="pane">`,
		`<div id="preview" class="pane"><h1 id="title">Title</h1></div>`,
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"notes &lt;draft&gt;",
		".chroma { color: red }",
		"height: 600px",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Error("editor text was not escaped")
	}
}

func TestPageHTML_Height(t *testing.T) {
	t.Parallel()

	got, err := pageHTML(Content{Height: 240})
	if err != nil {
		t.Fatalf("pageHTML() error: %v", err)
	}
	if !strings.Contains(got, "height: 240px") {
		t.Error("custom height not applied")
	}
}

// ---------------------------------------------------------------------------
// TestProbeTargets - Echo Probe Offsets
// ---------------------------------------------------------------------------

func TestProbeTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current float64
		max     float64
		n       int
		want    []float64
	}{
		{"from top", 0, 1000, 4, []float64{250, 750, 250, 750}},
		{"starting on first target", 250, 1000, 3, []float64{750, 250, 750}},
		{"tiny range", 0, 1, 3, []float64{1, 0, 1}},
		{"tiny range at bottom", 1, 1.4, 2, []float64{0, 1}},
		{"zero samples", 0, 1000, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := probeTargets(tt.current, tt.max, tt.n)
			if err != nil {
				t.Fatalf("probeTargets() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("probeTargets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbeTargets_NotScrollable(t *testing.T) {
	t.Parallel()

	for _, maxScroll := range []float64{-50, 0, 0.5} {
		if _, err := probeTargets(0, maxScroll, 5); !errors.Is(err, ErrNotScrollable) {
			t.Errorf("probeTargets(max=%v) error = %v, want ErrNotScrollable", maxScroll, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGeometryOf / TestMillis - Script Results
// ---------------------------------------------------------------------------

func TestGeometryOf(t *testing.T) {
	t.Parallel()

	g := geometryOf(gson.New(map[string]any{"top": 120.5, "height": 2400.0, "client": 600.0}))
	if g.ScrollTop != 120.5 || g.ScrollHeight != 2400 || g.ClientHeight != 600 {
		t.Errorf("geometryOf() = %+v", g)
	}
	if g.MaxScroll() != 1800 {
		t.Errorf("MaxScroll() = %v, want 1800", g.MaxScroll())
	}

	if empty := geometryOf(gson.New(nil)); empty.Scrollable() {
		t.Errorf("geometry of null result is scrollable: %+v", empty)
	}
}

func TestMillis(t *testing.T) {
	t.Parallel()

	if got := millis(16.5); got != 16500*time.Microsecond {
		t.Errorf("millis(16.5) = %v", got)
	}
}

func TestBrowserClose_Nil(t *testing.T) {
	t.Parallel()

	var b *Browser
	if err := b.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Non-positive PIDs would target the caller's own group.
	killProcessGroup(0)
	killProcessGroup(-1)
	killProcessGroup(999999999)
}
