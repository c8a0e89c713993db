// Package watcher triggers a rescrape when course material changes on disk.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the course repo recursively and invokes onChange once per
// settled batch of file events. Edits arrive in bursts (checkouts, editor
// saves), so the callback fires only after the tree has been quiet for the
// debounce interval.
type Watcher struct {
	root       string
	extensions []string
	debounce   time.Duration
	onChange   func()

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// New creates a watcher over root. extensions filters which files count as
// changes (empty = all); debounce <= 0 uses the default.
func New(root string, extensions []string, debounce time.Duration, onChange func(), logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		root:       root,
		extensions: extensions,
		debounce:   debounce,
		onChange:   onChange,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	info, err := os.Stat(w.root)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		w.mu.Unlock()
		return fmt.Errorf("not a directory: %s", w.root)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.watchTree(w.root)
	go w.run(ctx)
	w.logger.Info("watching course repo", zap.String("root", w.root), zap.Duration("debounce", w.debounce))
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// A new directory may arrive with files already in it.
			w.watchTree(ev.Name)
			w.schedule()
			return
		}
	}
	if !watchedExt(ev.Name, w.extensions) {
		return
	}
	w.logger.Debug("course file event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	w.schedule()
}

// schedule resets the batch timer; onChange fires once the tree has been
// quiet for the debounce interval.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		w.mu.Unlock()
		w.logger.Info("course changes settled")
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// watchTree adds dir and every directory under it to the watch set.
func (w *Watcher) watchTree(dir string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				w.logger.Debug("failed to watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
}

func watchedExt(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Stop stops the watcher, cancels any pending trigger, and releases
// resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
