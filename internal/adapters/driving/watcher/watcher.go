// Package watcher reloads the scheduler when the Config file is edited
// outside the running process.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/fanslysync/internal/logger"
)

// DefaultDebounce collapses the burst of events one save produces.
const DefaultDebounce = 250 * time.Millisecond

// Reconfigurer re-reads the Config.
type Reconfigurer interface {
	Reconfigure(ctx context.Context) error
}

// ConfigWatcher watches a single Config file for changes.
//
// The parent directory is watched rather than the file itself, because
// atomic writes replace the file by renaming over it.
type ConfigWatcher struct {
	path     string
	target   Reconfigurer
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	reloads int
}

// New creates a watcher for path. debounce <= 0 uses DefaultDebounce.
func New(path string, target Reconfigurer, debounce time.Duration) (*ConfigWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &ConfigWatcher{
		path:     abs,
		target:   target,
		debounce: debounce,
		watcher:  w,
	}, nil
}

// Run delivers reloads until ctx is cancelled, then releases the watcher.
func (cw *ConfigWatcher) Run(ctx context.Context) error {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	cw.running = true
	cw.mu.Unlock()

	defer cw.watcher.Close()

	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	logger.Debug("Watching %s for external edits", cw.path)

	timer := time.NewTimer(cw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if cw.relevant(event) {
				timer.Reset(cw.debounce)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error: %v", err)

		case <-timer.C:
			cw.reload(ctx)
		}
	}
}

// Reloads returns how many reloads have been delivered.
func (cw *ConfigWatcher) Reloads() int {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.reloads
}

func (cw *ConfigWatcher) reload(ctx context.Context) {
	logger.Info("Config file changed, reloading schedule")
	if err := cw.target.Reconfigure(ctx); err != nil {
		logger.Warn("Reload after config edit failed: %v", err)
	}

	cw.mu.Lock()
	cw.reloads++
	cw.mu.Unlock()
}

// relevant reports whether event touches the watched file.
// Chmod-only events are ignored.
func (cw *ConfigWatcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != cw.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
