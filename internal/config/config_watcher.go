package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raysh454/courier/internal/logging"
)

// Watcher reloads a TOML config file whenever it is written or replaced and
// hands the parsed result to a callback.
type Watcher struct {
	path     string
	logger   logging.Logger
	onChange func(FileConfig)
	delay    time.Duration
	ready    chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher watches path. onChange runs on its own goroutine after a short
// debounce and only for files that parse.
func NewWatcher(path string, logger logging.Logger, onChange func(FileConfig)) *Watcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		logger:   logger.With(logging.Field{Key: "component", Value: "config_watcher"}),
		onChange: onChange,
		delay:    100 * time.Millisecond,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watch is established.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done. The parent directory is watched so editors
// that save through rename are seen too.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	close(w.ready)
	w.logger.Debug("watching config file", logging.Field{Key: "path", Value: w.path})

	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", logging.Err(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		if ctx.Err() != nil {
			return
		}
		w.reload()
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("reloading config file", logging.Field{Key: "path", Value: w.path}, logging.Err(err))
		return
	}
	w.logger.Info("config file changed", logging.Field{Key: "path", Value: w.path})
	if w.onChange != nil {
		w.onChange(fc)
	}
}
