package configstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches a policy override file and re-applies it into a
// store when it changes.
type Reloader struct {
	watcher *fsnotify.Watcher
	store   Store
	path    string
	log     *slog.Logger
}

// NewReloader creates a file watcher for the override file at path.
// The file must exist at construction time.
func NewReloader(store Store, path string, log *slog.Logger) (*Reloader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configstore: override file: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("configstore: create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("configstore: watch %q: %w", path, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reloader{watcher: watcher, store: store, path: path, log: log}, nil
}

// Run watches for file changes and re-applies overrides. Blocks until
// ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after the last write before re-applying
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := ApplyOverrides(r.store, r.path); err != nil {
						r.log.Error("policy hot-reload failed", "path", r.path, "error", err)
					} else {
						r.log.Info("policy overrides reloaded", "path", r.path)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error("file watcher error", "error", err)
		}
	}
}
