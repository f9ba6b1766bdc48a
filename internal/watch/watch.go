// Package watch re-runs work when files in a set of directories change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hightemp/flagpic/internal/logger"
)

// DefaultDelay is how long events are collected before the handler runs.
const DefaultDelay = 500 * time.Millisecond

// Handler is called with the changed paths, sorted and de-duplicated.
type Handler func(ctx context.Context, changed []string) error

// Watcher debounces file system events into handler calls.
type Watcher struct {
	delay  time.Duration
	filter func(path string) bool

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// New creates a watcher. filter selects the paths that matter; nil accepts all.
func New(delay time.Duration, filter func(path string) bool) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Watcher{
		delay:   delay,
		filter:  filter,
		pending: make(map[string]struct{}),
		fire:    make(chan struct{}, 1),
	}
}

// Run watches dirs until ctx is done. Handler errors are logged and watching
// continues. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, dirs []string, handler Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if err := fsw.Add(abs); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", "dir", abs)
	}

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.add(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		case <-w.fire:
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			logger.Info("files changed", "count", len(changed))
			if err := handler(ctx, changed); err != nil {
				logger.Error("watch handler failed", "error", err)
			}
		}
	}
}

// add records a path and restarts the quiet-period timer.
func (w *Watcher) add(path string) {
	if w.filter != nil && !w.filter(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(out)
	return out
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
