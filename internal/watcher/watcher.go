// Package watcher reports when a listings file has been rewritten.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must stay unchanged before a
// change is reported.
const DefaultSettleDelay = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	SettleDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}

// Watcher watches a single file. The parent directory is watched so that
// editors which save by renaming a temp file over the original are seen.
type Watcher struct {
	path    string
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	size    int64
	modTime time.Time
}

// New starts watching path. The file must exist.
func New(path string, logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat watched file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("watched path %s is a directory", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		opts:    opts,
		logger:  logger,
		watcher: fw,
	}, nil
}

// Run calls onChange each time the file settles after a write, create or
// rename. It blocks until ctx is cancelled or the watcher is closed.
// onChange runs on a timer goroutine, never concurrently with itself.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var calls sync.Mutex
	fire := func() {
		calls.Lock()
		defer calls.Unlock()
		onChange()
	}

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.settle(fire)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.settle(fire)
				continue
			}
			w.logger.Warn("file watcher error", slog.String("path", w.path), slog.String("error", err.Error()))
		}
	}
}

// Close releases the underlying watch. A running Run returns.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

// settle (re)arms the timer. The change is reported only once size and
// mtime are unchanged across one full delay.
func (w *Watcher) settle(fire func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.size, w.modTime = w.statLocked()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.check(fire) })
}

func (w *Watcher) check(fire func()) {
	w.mu.Lock()
	size, modTime := w.statLocked()
	if size < 0 {
		// Removed, or mid-rename. A later create re-arms the timer.
		w.timer = nil
		w.mu.Unlock()
		return
	}
	if size != w.size || !modTime.Equal(w.modTime) {
		w.size, w.modTime = size, modTime
		w.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.check(fire) })
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	w.logger.Debug("watched file settled", slog.String("path", w.path), slog.Int64("size", size))
	fire()
}

func (w *Watcher) statLocked() (int64, time.Time) {
	info, err := os.Stat(w.path)
	if err != nil {
		return -1, time.Time{}
	}
	return info.Size(), info.ModTime()
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
