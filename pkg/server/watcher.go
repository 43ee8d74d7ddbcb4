package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/speckview/pkg/observability"
)

// WatcherOptions configures the source tree watcher.
type WatcherOptions struct {
	// RootFile is the root speck file; its directory tree is watched.
	RootFile string

	// Flusher is flushed after each debounced batch of changes.
	Flusher Flusher

	// Debounce is how long to wait for more changes before flushing.
	// Zero means 200ms.
	Debounce time.Duration

	Logger *log.Logger
}

// Watcher watches the source tree and flushes caches when speck files
// change. Snapshot cache keys already carry the source version, so the
// flush mainly keeps the memory cache from accumulating entries for
// versions that will never be requested again.
type Watcher struct {
	opts    WatcherOptions
	root    string
	watcher *fsnotify.Watcher
	logger  *log.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// NewWatcher creates a watcher rooted at the root file's directory.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Debounce == 0 {
		opts.Debounce = 200 * time.Millisecond
	}

	return &Watcher{
		opts:    opts,
		root:    filepath.Dir(opts.RootFile),
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}
	w.logger.Info("watching source tree", "root", w.root, "debounce", w.opts.Debounce)

	ticker := time.NewTicker(w.opts.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "err", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// addWatchesRecursive adds watches to all directories under root.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "err", err)
		}
		return nil
	})
}

// handleEvent accumulates speck file changes and picks up new directories.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".speck") {
		// New module directories need a watch before their files exist.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "err", err)
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("source change detected", "path", path, "op", event.Op.String())
}

// flushPending flushes caches once per debounce window with changes.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	for _, path := range changed {
		observability.Server().OnSourceChange(ctx, path)
	}
	if w.opts.Flusher != nil {
		w.opts.Flusher.Flush()
	}
	w.logger.Info("source changed, caches flushed", "files", len(changed))
}
