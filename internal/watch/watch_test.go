package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

const waitFor = 3 * time.Second

func startWatch(t *testing.T, path string) <-chan struct{} {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, Options{Debounce: 20 * time.Millisecond}, func() {
			changed <- struct{}{}
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(waitFor):
			t.Error("Run() did not return after cancel")
		}
	})

	// Let the watcher register before the test mutates the file.
	time.Sleep(50 * time.Millisecond)
	return changed
}

func expectChange(t *testing.T, changed <-chan struct{}) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(waitFor):
		t.Fatal("no change notification")
	}
}

func TestRun_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# one"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	changed := startWatch(t, path)

	if err := os.WriteFile(path, []byte("# two"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	expectChange(t, changed)
}

func TestRun_RenameOver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# one"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	changed := startWatch(t, path)

	tmp := filepath.Join(dir, ".doc.md.swp")
	if err := os.WriteFile(tmp, []byte("# two"), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	expectChange(t, changed)
}

func TestRun_IgnoresSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# one"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	changed := startWatch(t, path)

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	select {
	case <-changed:
		t.Error("sibling write triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gone", "doc.md")
	if err := Run(context.Background(), path, Options{}, func() {}); err == nil {
		t.Error("Run() on a missing directory should fail")
	}
}

func TestRun_NilCallback(t *testing.T) {
	t.Parallel()

	if err := Run(context.Background(), "doc.md", Options{}, nil); err == nil {
		t.Error("Run() with nil callback should fail")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   fsnotify.Op
		want bool
	}{
		{op: fsnotify.Write, want: true},
		{op: fsnotify.Create, want: true},
		{op: fsnotify.Rename, want: true},
		{op: fsnotify.Chmod, want: false},
		{op: fsnotify.Remove, want: false},
		{op: fsnotify.Write | fsnotify.Chmod, want: true},
	}
	for _, tt := range tests {
		if got := relevant(tt.op); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}
