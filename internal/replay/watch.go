package replay

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the coalescing window for file change events.
// Editors tend to emit several events per save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher invokes a callback when a scenario file changes on disk.
type Watcher struct {
	file  string
	delay time.Duration
	fn    func()
	fs    *fsnotify.Watcher

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// WatchFile watches file and calls fn after each change, coalescing
// bursts within delay (DefaultDebounce when delay <= 0). The parent
// directory is watched rather than the file itself, so editors that
// save by replacing the file keep triggering.
func WatchFile(file string, delay time.Duration, fn func()) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", file, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{file: abs, delay: delay, fn: fn, fs: fs}
	go w.loop()
	return w, nil
}

// Close stops watching and cancels any pending callback.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.bump()
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Watch errors are transient here; the re-run loop keeps going.
		}
	}
}

// bump restarts the debounce timer; the callback fires once the file
// has been quiet for the full delay.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fn)
}
