package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the settings file for external edits and reloads it.
// The watch is placed on the containing directory rather than the file, so
// the file may not exist yet and editors that save with rename-and-replace
// are still observed. Rapid write bursts are debounced into a single reload.
type Watcher struct {
	store         *Store
	watcher       *fsnotify.Watcher
	logger        *slog.Logger
	mutex         sync.Mutex
	callbacks     []func(AppSettings)
	lastModTime   time.Time
	debounceTimer *time.Timer
}

// NewWatcher starts watching the store's settings file. The containing
// directory must exist.
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		store:     store,
		watcher:   watcher,
		logger:    logger,
		callbacks: make([]func(AppSettings), 0),
	}

	if info, err := os.Stat(store.Path()); err == nil {
		w.lastModTime = info.ModTime()
	}

	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch settings directory: %w", err)
	}

	go w.watchLoop()

	return w, nil
}

// AddReloadCallback registers a callback invoked with the freshly loaded
// record after an external change.
func (w *Watcher) AddReloadCallback(callback func(AppSettings)) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

func (w *Watcher) watchLoop() {
	target := filepath.Clean(w.store.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				info, err := os.Stat(w.store.Path())
				if err != nil {
					// Mid rename-and-replace; the Create of the new
					// file follows.
					continue
				}

				w.mutex.Lock()
				if !info.ModTime().After(w.lastModTime) {
					w.mutex.Unlock()
					continue
				}
				w.lastModTime = info.ModTime()

				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(500*time.Millisecond, w.reload)
				w.mutex.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("settings file watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	loaded := w.store.Load()

	w.mutex.Lock()
	callbacks := make([]func(AppSettings), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mutex.Unlock()

	w.logger.Info("settings file changed on disk, reloaded", "path", w.store.Path())

	for _, callback := range callbacks {
		callback(loaded)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mutex.Unlock()
	return w.watcher.Close()
}
