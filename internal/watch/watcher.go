// Package watch reports debounced changes to a fixed set of files.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"testderive/internal/clock"
)

// DefaultDebounce batches the burst of events editors emit for a single save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches the directories holding a set of files and emits the path
// of the last changed file once no further change arrived for Debounce.
type Watcher struct {
	Debounce time.Duration

	clock  clock.Clock
	fsw    *fsnotify.Watcher
	events <-chan fsnotify.Event
	errs   <-chan error
	files  map[string]struct{}

	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	changesCh chan string
	errorCh   chan error
}

// New creates a Watcher for paths. Parent directories are watched rather than
// the files themselves so that atomic replace-on-save is still observed.
func New(paths []string, debounce time.Duration, clk clock.Clock) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w := newWatcher(fsw.Events, fsw.Errors, files, debounce, clk)
	w.fsw = fsw
	return w, nil
}

func newWatcher(events <-chan fsnotify.Event, errs <-chan error, files map[string]struct{}, debounce time.Duration, clk clock.Clock) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		Debounce:  debounce,
		clock:     clk,
		events:    events,
		errs:      errs,
		files:     files,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		changesCh: make(chan string),
		errorCh:   make(chan error, 2),
	}
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.run()
}

// Stop stops the watching goroutine and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
	})
}

// Changes returns a channel of changed file paths, one per debounced burst.
func (w *Watcher) Changes() <-chan string {
	return w.changesCh
}

// Errors returns a channel of errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.errorCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	var (
		pending string
		timer   <-chan time.Time
	)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			pending = filepath.Clean(ev.Name)
			timer = w.clock.After(w.Debounce)
		case err, ok := <-w.errs:
			if !ok {
				return
			}
			select {
			case w.errorCh <- err:
			default:
			}
		case <-timer:
			timer = nil
			select {
			case w.changesCh <- pending:
			case <-w.stopCh:
				return
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}
