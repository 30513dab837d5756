// Package watcher monitors the master catalog file for changes.
//
// The catalog is loaded once at startup and is immutable for the process
// lifetime, so the watcher doesn't hot-reload anything; it invokes a callback
// when the file settles after a change, and the caller decides what to do
// (typically log that a restart is needed to pick up the new catalog).
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the file must be quiet before the change
// callback fires. Editors and atomic-rename writers produce bursts of events;
// debouncing collapses a burst into one callback.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher watches a single file via its parent directory.
type Watcher struct {
	path        string
	settleDelay time.Duration
	onChange    func(path string)
	logger      *slog.Logger

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for the given file. onChange runs on the watcher
// goroutine after each settled change, so it must not block for long.
func New(path string, settleDelay time.Duration, onChange func(path string), logger *slog.Logger) (*Watcher, error) {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	// Watch the parent directory: most writers replace the file by rename,
	// which drops a watch placed on the file itself.
	dir := filepath.Dir(filepath.Clean(path))
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		path:        filepath.Clean(path),
		settleDelay: settleDelay,
		onChange:    onChange,
		logger:      logger,
		watcher:     fsw,
		done:        make(chan struct{}),
	}, nil
}

// Start processes events until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watching catalog file", "path", w.path)

	<-ctx.Done()
	return w.Stop()
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// The whole parent directory is watched; only our file matters.
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Restart the settle timer on every event in the burst.
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settleDelay, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	// The file may have been removed mid-burst.
	if _, err := os.Stat(w.path); err != nil {
		w.logger.Warn("catalog file changed but is not readable", "path", w.path, "error", err)
		return
	}

	w.logger.Info("catalog file changed", "path", w.path)
	w.onChange(w.path)
}
