package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// MetricsWatcher monitors the metrics directory for new or rewritten run
// documents and triggers a debounced refresh.
type MetricsWatcher struct {
	dir          string
	onChange     func(ctx context.Context)
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	refreshChan  chan struct{}
	debounceTime time.Duration
}

// NewMetricsWatcher creates a watcher over dir. onChange runs after file
// activity has settled for the debounce window.
func NewMetricsWatcher(dir string, debounce time.Duration, onChange func(ctx context.Context)) (*MetricsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve metrics directory: %w", err)
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &MetricsWatcher{
		dir:          absDir,
		onChange:     onChange,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		refreshChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Start begins monitoring the metrics directory.
func (mw *MetricsWatcher) Start(ctx context.Context) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if err := mw.watcher.Add(mw.dir); err != nil {
		return fmt.Errorf("failed to watch metrics directory %s: %w", mw.dir, err)
	}

	slog.Info("Starting metrics watcher", "dir", mw.dir, "debounce", mw.debounceTime)

	go mw.watchLoop(ctx)
	go mw.refreshLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (mw *MetricsWatcher) Stop() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	slog.Info("Stopping metrics watcher")
	close(mw.stopChan)
	return mw.watcher.Close()
}

func (mw *MetricsWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-mw.stopChan:
			return
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}

			if !isRunDocument(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("Run document change detected", "file", event.Name, "op", event.Op.String())
				mw.triggerRefresh()
			}

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Metrics watcher error", "error", err)
		}
	}
}

func (mw *MetricsWatcher) refreshLoop(ctx context.Context) {
	var refreshTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if refreshTimer != nil {
				refreshTimer.Stop()
			}
			return
		case <-mw.stopChan:
			if refreshTimer != nil {
				refreshTimer.Stop()
			}
			return
		case <-mw.refreshChan:
			if refreshTimer != nil {
				refreshTimer.Stop()
			}
			refreshTimer = time.AfterFunc(mw.debounceTime, func() {
				mw.onChange(ctx)
			})
		}
	}
}

// triggerRefresh coalesces rapid file events into one pending refresh.
func (mw *MetricsWatcher) triggerRefresh() {
	select {
	case mw.refreshChan <- struct{}{}:
	default:
		// Refresh already pending
	}
}

// isRunDocument reports whether a path looks like an exported run document.
func isRunDocument(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_processing.json")
}
