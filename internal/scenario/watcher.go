package scenario

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/esnya/ResoBotGW/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changes to a single scenario file.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger for watch errors.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher watches path. The parent directory is watched so that editors
// which save by renaming a temp file over the original are still seen.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange after each settled burst of writes to the file until
// ctx is done, then closes the watcher and returns ctx.Err().
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(0)
	<-timer.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending {
				pending = false
				onChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("scenario watch error", "path", w.path, "error", err.Error())
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
