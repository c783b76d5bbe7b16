// Package watch reloads a document when it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor emits per save.
const DefaultDebounce = 75 * time.Millisecond

// Options configures Run.
type Options struct {
	// Debounce is the quiet period after the last event before onChange runs.
	// Zero uses DefaultDebounce.
	Debounce time.Duration
	// OnError receives watcher errors. Watching continues after an error.
	OnError func(error)
}

// Run watches path until ctx is done and calls onChange once each burst of
// changes settles. It watches the parent directory so editors that save by
// writing a temp file and renaming it over the original keep triggering.
// Run returns nil when ctx is canceled.
func Run(ctx context.Context, path string, opts Options, onChange func()) error {
	if onChange == nil {
		return errors.New("watch: nil onChange")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch: adding %s: %w", filepath.Dir(abs), err)
	}

	settle := time.NewTimer(debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !relevant(event.Op) {
				continue
			}
			settle.Reset(debounce)
		case <-settle.C:
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op&fsnotify.Write == fsnotify.Write ||
		op&fsnotify.Create == fsnotify.Create ||
		op&fsnotify.Rename == fsnotify.Rename
}
