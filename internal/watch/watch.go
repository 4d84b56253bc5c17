// Package watch re-runs work when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/smbenum/internal/logger"
)

// DefaultDebounce is how long a burst of writes must settle before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a function whenever one file is written, created, renamed
// over or removed. Bursts of events within the debounce interval are
// coalesced into a single call.
type Watcher struct {
	path     string
	onChange func(ctx context.Context) error
	debounce time.Duration
}

// New returns a Watcher for path. onChange runs on the Run goroutine, so a
// slow callback delays the next one rather than overlapping it.
func New(path string, onChange func(ctx context.Context) error) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the default debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled. The parent directory is watched rather
// than the file itself: editors commonly save by writing a temporary file
// and renaming it over the original, which would drop a watch on the file.
//
// Errors returned by the callback are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("Watching targets file", "path", w.path)

	// Starts stopped; reset on each relevant event.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Targets watcher stopping", "path", w.path)
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("Targets file changed", "path", ev.Name, "op", ev.Op.String())
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", logger.Err(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := w.onChange(ctx); err != nil {
				logger.Error("Re-run after targets change failed", logger.Err(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
