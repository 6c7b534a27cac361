package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moolen/pagecheck/internal/logging"
)

// ChangeCallback is invoked, debounced, after any watched file changed.
// path is the last file that triggered the reload. Errors are logged and the
// watcher keeps going.
type ChangeCallback func(path string) error

// WatcherConfig holds configuration for the Watcher.
type WatcherConfig struct {
	// Paths are the files to watch: the run config and scenario files.
	Paths []string

	// Debounce coalesces bursts of events (editor save sequences) into a
	// single callback. Default: 500ms.
	Debounce time.Duration
}

// Watcher triggers a callback when the run config or a scenario file changes.
type Watcher struct {
	config   WatcherConfig
	callback ChangeCallback
	logger   *logging.Logger
	cancel   context.CancelFunc
	stopped  chan struct{}
	ready    chan struct{}
	mu       sync.Mutex

	debounceTimer *time.Timer
	lastPath      string
}

// NewWatcher validates cfg and returns an idle watcher.
func NewWatcher(cfg WatcherConfig, callback ChangeCallback) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one path must be watched")
	}
	if callback == nil {
		return nil, errors.New("callback cannot be nil")
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	paths := make([]string, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", p, err)
		}
		paths = append(paths, abs)
	}
	cfg.Paths = paths

	return &Watcher{
		config:   cfg,
		callback: callback,
		logger:   logging.GetLogger("config.watcher"),
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Start begins watching in the background and returns once the underlying
// fsnotify watcher is registered on every path.
func (w *Watcher) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	errCh := make(chan error, 1)
	go w.watchLoop(watchCtx, errCh)

	select {
	case <-w.ready:
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return errors.New("timeout waiting for file watcher to initialize")
	}
}

func (w *Watcher) watchLoop(ctx context.Context, errCh chan<- error) {
	defer close(w.stopped)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errCh <- fmt.Errorf("failed to create file watcher: %w", err)
		return
	}
	defer watcher.Close()

	for _, p := range w.config.Paths {
		if err := watcher.Add(p); err != nil {
			errCh <- fmt.Errorf("failed to watch %s: %w", p, err)
			return
		}
	}

	w.logger.Info("Watching %d file(s) for changes (debounce: %s)", len(w.config.Paths), w.config.Debounce)
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Atomic saves replace the inode; the watch must be re-added.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(event.Name); err != nil {
					w.logger.Warn("Failed to re-add watch on %s after %s: %v", event.Name, event.Op, err)
				}
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule resets the debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastPath = path
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.mu.Lock()
		p := w.lastPath
		w.mu.Unlock()

		w.logger.Info("Change detected in %s", p)
		if err := w.callback(p); err != nil {
			w.logger.Warn("Reload failed (continuing to watch): %v", err)
		}
	})
}

// Stop ends the watch loop, waiting at most 5 seconds.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("timeout waiting for watcher to stop")
	}
}
