// Package watch re-checks a manifest every time it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/gate"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Checker is the part of the gate a Watcher needs.
type Checker interface {
	CheckFile(path string) (*gate.Verdict, error)
}

// Watcher runs a manifest through a Checker on start and after every
// write, create or rename of the file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	checker  Checker
	path     string
	logger   *zap.Logger
	onResult func(*gate.Verdict)

	// Debounce is the quiet period before a re-check. Set before Run.
	Debounce time.Duration
}

// New watches the directory holding path, so replace-on-save editors are
// still seen. onResult receives every verdict, including the initial one.
func New(path string, checker Checker, logger *zap.Logger, onResult func(*gate.Verdict)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		watcher:  fw,
		checker:  checker,
		path:     abs,
		logger:   logger,
		onResult: onResult,
		Debounce: DefaultDebounce,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) check() {
	v, _ := w.checker.CheckFile(w.path)
	if w.onResult != nil {
		w.onResult(v)
	}
}

// Run checks the manifest once, then again after each change. Blocks until
// ctx is cancelled. Callbacks never run concurrently.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.check()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("manifest changed", zap.String("path", w.path), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.check()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
