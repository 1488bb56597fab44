package integration

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/valter-silva-au/wayanad-weather/internal/storage"
)

// Publisher receives the name of a collection changed by another process.
type Publisher interface {
	Publish(collection string)
}

// EventLogger records watcher errors.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// WatchedDir is a storage directory whose files map to collection keys. The
// file medium satisfies it.
type WatchedDir interface {
	Dir() string
	KeyForPath(path string) (string, bool)
}

// StorageWatcher republishes collection files written by other processes as
// change notifications. Writes made by this process are seen too, so
// subscribers may be told twice about one change.
type StorageWatcher struct {
	dir     WatchedDir
	pub     Publisher
	events  EventLogger
	watcher *fsnotify.Watcher
	keys    map[string]bool
}

// NewStorageWatcher starts watching dir. Changes that happen after it
// returns are delivered once Run is called. events may be nil.
func NewStorageWatcher(dir WatchedDir, pub Publisher, events EventLogger) (*StorageWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating storage watcher: %w", err)
	}
	// The directory is watched rather than the files because each write
	// replaces the file through a rename.
	if err := w.Add(dir.Dir()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir.Dir(), err)
	}
	return &StorageWatcher{
		dir:     dir,
		pub:     pub,
		events:  events,
		watcher: w,
		keys: map[string]bool{
			storage.CollectionAccounts:     true,
			storage.CollectionObservations: true,
		},
	}, nil
}

// Run delivers notifications until ctx is cancelled or the watcher closes.
func (sw *StorageWatcher) Run(ctx context.Context) error {
	defer func() { _ = sw.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			sw.handle(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			if sw.events != nil {
				_ = sw.events.LogEvent("notifier.watch_error", map[string]any{
					"dir":   sw.dir.Dir(),
					"error": err.Error(),
				})
			}
		}
	}
}

// Close stops the watcher without a context.
func (sw *StorageWatcher) Close() error {
	return sw.watcher.Close()
}

func (sw *StorageWatcher) handle(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
		return
	}
	key, ok := sw.dir.KeyForPath(event.Name)
	if !ok || !sw.keys[key] {
		return
	}
	sw.pub.Publish(key)
}
