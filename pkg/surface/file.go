package surface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the bursts of events editors emit for one save.
const DefaultDebounce = 150 * time.Millisecond

// FileOption configures a File surface.
type FileOption func(*File)

// WithLogger routes watcher diagnostics to logger.
func WithLogger(logger *zap.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) FileOption {
	return func(f *File) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// File is a Surface backed by a file on disk.
type File struct {
	path     string
	logger   *zap.Logger
	debounce time.Duration

	mu sync.Mutex
	// last is the content most recently written by Write or delivered to a
	// watcher. Events that leave the file at this content are not edits.
	last    string
	hasLast bool
}

var _ Surface = (*File)(nil)

// NewFile returns a File surface for path. The file does not need to exist
// until the first Read.
func NewFile(path string, options ...FileOption) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("surface: resolve %q: %w", path, err)
	}
	f := &File{
		path:     abs,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Read() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("surface: read %s: %w", f.path, err)
	}
	return string(data), nil
}

func (f *File) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.WriteFile(f.path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("surface: write %s: %w", f.path, err)
	}
	f.last = text
	f.hasLast = true
	return nil
}

// Watch delivers onEdit after every external change to the file, once the
// debounce window has passed without further events. Writes made through
// Write are not reported. The watch is registered before Watch returns; it
// stops when ctx is cancelled or Stop is called.
func (f *File) Watch(ctx context.Context, onEdit func()) (*Watch, error) {
	if onEdit == nil {
		return nil, errors.New("surface: watch callback is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("surface: create watcher: %w", err)
	}
	// Editors often save by renaming a temp file over the target, so watch the
	// directory and filter by name.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("surface: watch %s: %w", filepath.Dir(f.path), err)
	}

	if current, err := f.Read(); err == nil {
		f.remember(current)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{cancel: cancel, done: make(chan struct{})}
	go f.run(ctx, watcher, onEdit, w)

	f.logger.Debug("watching text surface", zap.String("path", f.path))
	return w, nil
}

func (f *File) run(ctx context.Context, watcher *fsnotify.Watcher, onEdit func(), w *Watch) {
	defer close(w.done)
	defer watcher.Close()

	timer := time.NewTimer(f.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(f.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("text surface watcher error", zap.String("path", f.path), zap.Error(err))
			w.setErr(err)

		case <-timer.C:
			text, err := f.Read()
			if err != nil {
				// The file may be mid-replace; the next event retries.
				f.logger.Debug("text surface unreadable", zap.Error(err))
				continue
			}
			if !f.remember(text) {
				continue
			}
			f.logger.Debug("text surface edited", zap.String("path", f.path))
			onEdit()
		}
	}
}

// remember records text as seen and reports whether it differs from the
// previously seen content.
func (f *File) remember(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hasLast && f.last == text {
		return false
	}
	f.last = text
	f.hasLast = true
	return true
}

// Watch is a running file watch.
type Watch struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Stop ends the watch and waits for its goroutine to exit.
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

// Done is closed once the watch goroutine has exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Err returns the last error reported by the underlying watcher.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watch) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}
