package defwatcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 300 * time.Millisecond

// Reloader re-reads a single definition file. Both the route and step
// registries satisfy it.
type Reloader interface {
	Reload(path string) error
}

// Watcher hot-reloads YAML definition files under one directory.
type Watcher struct {
	reloader Reloader
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	debounce map[string]*time.Timer
	logger   *slog.Logger
}

func New(reloader Reloader, path string) *Watcher {
	return &Watcher{reloader: reloader, path: path, debounce: make(map[string]*time.Timer)}
}

func (w *Watcher) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	if _, err := os.Stat(w.path); err != nil {
		_ = w.watcher.Close()
		return err
	}
	if err := w.watcher.Add(w.path); err != nil {
		_ = w.watcher.Close()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if shouldReload(event) && isDefinition(event.Name) {
				w.scheduleReload(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher_error", "error", err)
		}
	}
}

func shouldReload(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func isDefinition(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (w *Watcher) scheduleReload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()

		if err := w.reloader.Reload(path); err != nil {
			w.logError("definition_reload_failed", "path", path, "error", err)
			return
		}
		w.logInfo("definition_reloaded", "path", path)
	})
}

func (w *Watcher) logInfo(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Watcher) logError(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Error(msg, args...)
	}
}
