package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Change is a settled change to a knowledge file. Removed is set when the
// file no longer exists under its name (deleted or renamed away).
type Change struct {
	Path    string
	Removed bool
}

// Watcher reports knowledge files that were created, modified or removed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a Watcher.
func NewWatcher(debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{watcher: w, debounce: debounce, logger: logger}, nil
}

// Watch calls handle for every settled change under dir until ctx is done.
// The last event of a burst decides whether the file was removed.
// handle runs on the watch goroutine, one file at a time.
func (w *Watcher) Watch(ctx context.Context, dir string, handle func(ctx context.Context, c Change)) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	type pendingChange struct {
		at      time.Time
		removed bool
	}
	pending := make(map[string]pendingChange)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != KnowledgeExt {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending[ev.Name] = pendingChange{at: time.Now(), removed: true}
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = pendingChange{at: time.Now()}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		case now := <-tick.C:
			for path, p := range pending {
				if now.Sub(p.at) < w.debounce {
					continue
				}
				delete(pending, path)
				handle(ctx, Change{Path: path, Removed: p.removed})
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
