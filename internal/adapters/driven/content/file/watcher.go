package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before its last
// event is emitted. Editors commonly write a file several times in
// quick succession; one ingestion per save is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a directory and emits SourceChange events for
// supported text files. Directories, hidden files, and unsupported
// formats are ignored.
type Watcher struct {
	dir      string
	fs       *fsnotify.Watcher
	debounce time.Duration

	changes chan domain.SourceChange
	errs    chan error
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool
}

type pendingEvent struct {
	change domain.SourceChange
	timer  *time.Timer
}

// NewWatcher creates a watcher for the given directory.
func NewWatcher(dir string) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving watch dir: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(abs); err != nil {
		fs.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", abs, err)
	}

	return &Watcher{
		dir:      abs,
		fs:       fs,
		debounce: DefaultDebounce,
		changes:  make(chan domain.SourceChange, 16),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingEvent),
	}, nil
}

// Changes is the stream of debounced source changes.
func (w *Watcher) Changes() <-chan domain.SourceChange {
	return w.changes
}

// Errors is the stream of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Run pumps fsnotify events into the change stream until the context
// is cancelled or the underlying watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				w.flush()
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				continue
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// Close stops the underlying watcher. Run returns once the event
// channel drains.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// handle maps one fsnotify event to a debounced source change.
// Create becomes created, Write becomes updated, Remove and Rename
// become deleted. Chmod is noise and is dropped.
func (w *Watcher) handle(event fsnotify.Event) {
	if ignorePath(event.Name) {
		return
	}

	var change domain.SourceChange
	switch {
	case event.Has(fsnotify.Create):
		// Creates of directories are not ingestible.
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return
		}
		change = domain.SourceChange{Type: domain.ChangeCreated, Ref: event.Name}
	case event.Has(fsnotify.Write):
		change = domain.SourceChange{Type: domain.ChangeUpdated, Ref: event.Name}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change = domain.SourceChange{Type: domain.ChangeDeleted, Ref: event.Name}
	default:
		return
	}

	w.schedule(change)
}

// schedule arms (or re-arms) the per-path debounce timer with the
// latest change for that path.
func (w *Watcher) schedule(change domain.SourceChange) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[change.Ref]; ok {
		p.change = change
		p.timer.Reset(w.debounce)
		return
	}

	p := &pendingEvent{change: change}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.emit(change.Ref)
	})
	w.pending[change.Ref] = p
}

// emit delivers the pending change for a path. The change stream is
// never closed, so a timer firing during teardown cannot panic; the
// send aborts once flush signals done.
func (w *Watcher) emit(ref string) {
	w.mu.Lock()
	p, ok := w.pending[ref]
	if ok {
		delete(w.pending, ref)
	}
	if w.closed {
		ok = false
	}
	w.mu.Unlock()

	if !ok {
		return
	}
	select {
	case w.changes <- p.change:
	case <-w.done:
	}
}

// flush cancels pending timers and releases any emit goroutine still
// waiting to send. The change stream stays open: consumers stop on
// their own context.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for ref, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, ref)
	}
	w.mu.Unlock()
	close(w.done)
}

// ignorePath reports whether the path should never produce events:
// hidden files and files that are not a supported text format.
func ignorePath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return !IsTextFile(path)
}
