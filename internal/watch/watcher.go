// Package watch keeps converted scripts current while documentation
// source changes: a filesystem watcher triggers debounced reconversion
// runs, and a scheduler drives periodic full runs.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openstack-archive/rst2bash/internal/logfields"
)

// sourceExtension marks files whose changes trigger a reconversion.
const sourceExtension = ".rst"

// Watcher monitors the documentation source tree and triggers debounced
// reconversion runs when source files change.
type Watcher struct {
	dir          string
	run          func(ctx context.Context)
	watcher      *fsnotify.Watcher
	mu           sync.RWMutex
	stopChan     chan struct{}
	convertChan  chan struct{}
	debounceTime time.Duration
}

// NewWatcher creates a watcher over the given source directory. The run
// callback performs one full reconversion; rapid bursts of file events
// collapse into a single call after the debounce window.
func NewWatcher(dir string, debounce time.Duration, run func(ctx context.Context)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}

	return &Watcher{
		dir:          absDir,
		run:          run,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		convertChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Start begins monitoring the source tree. Every existing subdirectory
// is watched; directories created later are added as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch source tree %s: %w", w.dir, err)
	}

	slog.Info("Starting source watcher", logfields.Path(w.dir),
		slog.Duration("debounce", w.debounceTime))

	go w.watchLoop(ctx)
	go w.convertLoop(ctx)

	return nil
}

// Stop stops the watcher and its goroutines.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	slog.Info("Stopping source watcher")
	close(w.stopChan)

	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}
	return nil
}

// watchLoop consumes filesystem events and turns relevant ones into
// reconversion triggers.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
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
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

// handleEvent filters one filesystem event. New directories extend the
// watch set; source file writes, creations, and renames trigger a run.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		// A created path with no extension is likely a new directory.
		if filepath.Ext(event.Name) == "" {
			if err := w.watcher.Add(event.Name); err == nil {
				slog.Debug("Watching new directory", logfields.Path(event.Name))
			}
		}
	}

	if !relevantEvent(event) {
		return
	}

	slog.Debug("Source change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
	w.triggerConvert()
}

// relevantEvent reports whether the event should trigger a reconversion.
func relevantEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != sourceExtension {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// convertLoop runs debounced reconversions.
func (w *Watcher) convertLoop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.convertChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				w.run(ctx)
			})
		}
	}
}

// triggerConvert schedules a debounced reconversion.
func (w *Watcher) triggerConvert() {
	select {
	case w.convertChan <- struct{}{}:
	default:
		// Conversion already pending
	}
}
