// Package watcher monitors the prompts directory for markdown changes.
//
// Editors write files in bursts (temp file, truncate, several writes),
// so raw notifications are debounced: a file only produces an event
// once its size and mtime have held still for the settle delay.
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

// Watcher monitors file system changes under the watched directories.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	watcher *fsnotify.Watcher

	pending map[string]*pendingEvent // path -> pending event info
	mu      sync.Mutex               // protects pending map and event emission

	events   chan Event
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	path    string
	size    int64
	modTime time.Time
	timer   *time.Timer
	created bool // first sighting of this path, not an edit
}

// New creates a new file watcher.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		watcher: watcher,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a directory to be monitored recursively.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %s is not a directory", path)
	}

	return w.watchDir(path)
}

// watchDir recursively watches a directory.
func (w *Watcher) watchDir(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if w.opts.shouldIgnore(p) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(p); err != nil {
			w.logger.Error("failed to add watch", "path", p, "error", err)
			return nil
		}

		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Start begins watching for events.
// This method blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// processEvents processes fsnotify events.
func (w *Watcher) processEvents(ctx context.Context) {
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
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("error channel full, dropping watcher error", "error", err)
			}
		}
	}
}

// handleFsnotifyEvent maps a raw notification onto the settled event
// stream.
func (w *Watcher) handleFsnotifyEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory extends the watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.opts.shouldIgnore(path) {
				w.watchDir(path)
			}
			return
		}
	}

	if w.opts.shouldIgnoreFile(path) {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename leaves nothing at this path; if the file moved
		// within the tree, its new name arrives as a separate create.
		w.emitRemoved(path)

	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.startSettling(path, event.Op&fsnotify.Create != 0)

	case event.Op&fsnotify.Chmod != 0:
		w.mu.Lock()
		w.emit(Event{Type: EventOther, Path: path})
		w.mu.Unlock()
	}
}

// emitRemoved cancels any pending settle for the path and emits a
// removal.
func (w *Watcher) emitRemoved(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}

	w.emit(Event{Type: EventRemoved, Path: path})
}

// startSettling begins or re-arms the settling process for a file.
func (w *Watcher) startSettling(path string, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A create followed by writes is still a create.
	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		created = created || pending.created
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("failed to stat file", "path", path, "error", err)
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	pending := &pendingEvent{
		path:    path,
		size:    info.Size(),
		modTime: info.ModTime(),
		created: created,
	}
	pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(path)
	})

	w.pending[path] = pending
}

// checkSettled checks if a file has finished settling.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, exists := w.pending[path]
	if !exists {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// File vanished mid-settle.
		delete(w.pending, path)
		w.emit(Event{Type: EventRemoved, Path: path})
		return
	}

	// Still changing, restart timer.
	if info.Size() != pending.size || info.ModTime() != pending.modTime {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(path)
		})
		return
	}

	delete(w.pending, path)

	eventType := EventModified
	if pending.created {
		eventType = EventCreated
	}
	w.emit(Event{
		Type:    eventType,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

// emit sends an event to the events channel. Callers must hold w.mu:
// Stop closes the channel under the same lock, so a send can never hit
// a closed channel.
func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Events returns the channel for receiving file system events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources. Safe to call more
// than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)

		// Close fsnotify watcher and wait for the process loop.
		w.watcher.Close()
		w.wg.Wait()

		// Cancel pending timers and close channels under the lock; an
		// in-flight settle callback either finishes its emit first or
		// finds the pending map empty.
		w.mu.Lock()
		for _, pending := range w.pending {
			pending.timer.Stop()
		}
		clear(w.pending)
		close(w.events)
		close(w.errors)
		w.mu.Unlock()
	})
	return nil
}
