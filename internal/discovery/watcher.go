package discovery

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// rescanQuiet is how long the watcher waits after the last filesystem
// event before triggering a rescan, coalescing bursts from package
// installs that touch many .desktop files at once.
var rescanQuiet = 2 * time.Second

// Watcher triggers catalog rescans when watched directories change.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	onDirty func()
	done    chan struct{}
}

// NewWatcher watches dirs and invokes onDirty (on the watcher goroutine)
// after changes settle. Directories that cannot be watched are skipped.
func NewWatcher(dirs []string, onDirty func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Debug("not watching directory", "dir", dir, "error", err)
			continue
		}
		watched++
	}
	logger.Info("catalog watcher started", "directories", watched)

	w := &Watcher{fsw: fsw, logger: logger, onDirty: onDirty, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(rescanQuiet)
				fire = timer.C
			} else {
				// Drain a tick that may have landed since the last
				// reset so the quiet period starts fresh.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(rescanQuiet)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)

		case <-fire:
			timer = nil
			fire = nil
			w.onDirty()

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
