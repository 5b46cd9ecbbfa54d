// Package watcher turns file system changes under the local dataset
// directories into load and unload events for the registry.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a settled change to a dataset file.
type Event struct {
	Path      string
	Operation Operation
}

// Operation classifies what happened to a dataset file.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler receives each settled dataset event.
type Handler func(ctx context.Context, event Event) error

// arrival is a change still waiting out the debounce window.
type arrival struct {
	at time.Time
	op Operation
}

// Watcher observes dataset directories and reports changes once they
// settle. Copying a large GeoPackage emits a burst of write events;
// debouncing holds the event back until the file has been quiet for
// the configured window.
type Watcher struct {
	fs       *fsnotify.Watcher
	handler  Handler
	logger   *slog.Logger
	paths    []string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*arrival
}

// Config holds watcher configuration.
type Config struct {
	Paths    []string
	Debounce time.Duration
}

// New creates a dataset file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fs:       fs,
		handler:  handler,
		logger:   logger,
		paths:    cfg.Paths,
		debounce: cfg.Debounce,
		pending:  make(map[string]*arrival),
	}, nil
}

// Start registers the configured directories and begins observing. A
// path that cannot be watched is logged and skipped so one bad mount
// does not take the others down.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.logger.Warn("invalid watch path", "path", path, "error", err)
			continue
		}
		if err := w.fs.Add(abs); err != nil {
			w.logger.Warn("failed to watch path", "path", abs, "error", err)
			continue
		}
		w.logger.Info("watching dataset directory", "path", abs)
	}

	go w.eventLoop(ctx)
	go w.flushLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fs.Close()
}

// AddPath registers another directory at runtime.
func (w *Watcher) AddPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fs.Add(abs); err != nil {
		return err
	}
	w.logger.Info("watching dataset directory", "path", abs)
	return nil
}

// RemovePath stops observing a directory.
func (w *Watcher) RemovePath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fs.Remove(abs); err != nil {
		return err
	}
	w.logger.Info("stopped watching dataset directory", "path", abs)
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.record(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// record queues a raw event for debouncing, merging it with one already
// pending for the same path.
func (w *Watcher) record(ev fsnotify.Event) {
	if !isDatasetFile(ev.Name) {
		return
	}

	op := classify(ev.Op)
	w.logger.Debug("dataset file event", "path", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()

	if a, ok := w.pending[ev.Name]; ok {
		a.at = time.Now()
		a.op = coalesce(a.op, op)
		return
	}
	w.pending[ev.Name] = &arrival{at: time.Now(), op: op}
}

// coalesce merges a new operation into one already queued for the same
// path. A delete followed by a create is a replacement, so the create
// wins; otherwise a delete overrides whatever came before it.
func coalesce(queued, next Operation) Operation {
	switch {
	case queued == OpDelete && next == OpCreate:
		return OpCreate
	case next == OpDelete:
		return OpDelete
	default:
		return queued
	}
}

func (w *Watcher) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush dispatches every pending event whose debounce window has
// elapsed. Handlers run outside the lock and in their own goroutine so
// a slow dataset load cannot stall the watcher.
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()

	w.mu.Lock()
	var due []Event
	for path, a := range w.pending {
		if now.Sub(a.at) < w.debounce {
			continue
		}
		delete(w.pending, path)
		due = append(due, Event{Path: path, Operation: a.op})
	}
	w.mu.Unlock()

	for _, e := range due {
		w.logger.Info("dataset file settled", "path", e.Path, "operation", e.Operation.String())
		go func(e Event) {
			if err := w.handler(ctx, e); err != nil {
				w.logger.Error("dataset reload failed",
					"path", e.Path, "operation", e.Operation.String(), "error", err)
			}
		}(e)
	}
}

// classify folds the fsnotify flag set into the three operations the
// registry distinguishes. A rename leaves nothing at the old path, so
// it counts as a delete.
func classify(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpModify
	}
}

// isDatasetFile reports whether a path names a GeoPackage dataset.
func isDatasetFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gpkg")
}
