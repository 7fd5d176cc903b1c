package cache

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the cache directory for writes made by another
// process holding the same resource index, logging them as an Info
// note rather than reloading automatically: the next Open call
// already re-acquires the lock and re-reads, so a live reload here
// would just race that path. Save does not re-read; it writes this
// process's in-memory state over the persisted files.
type Watcher struct {
	w *fsnotify.Watcher
}

// WatchDirectory starts watching cacheDir for external writes to
// either persisted file, using fsnotify to report the other process's
// changes without polling.
func WatchDirectory(cacheDir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(cacheDir); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{w: w}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if event.Name == "" {
				continue
			}
			base := eventBaseName(event.Name)
			if base != downloadCacheFileName && base != resourceIndexFileName {
				continue
			}
			log.Printf("cache: external modification of %s detected (%s)", base, event.Op)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("cache: watch error: %v", err)
		}
	}
}

func eventBaseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// Close stops the watch.
func (w *Watcher) Close() error {
	return w.w.Close()
}
