package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the quiet period used when New is given zero.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New starts watching path. The file's directory must exist.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, eris.Wrapf(err, "watcher: resolve %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "watcher: create")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, eris.Wrapf(err, "watcher: watch %s", filepath.Dir(abs))
	}

	return &Watcher{path: abs, debounce: debounce, fsw: fsw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn once per debounced burst of changes until ctx is cancelled
// or fn returns an error. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	trigger := make(chan struct{}, 1)

	g.Go(func() error {
		defer close(trigger)

		timer := time.NewTimer(w.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return nil
				}
				if w.relevant(ev) {
					timer.Reset(w.debounce)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return nil
				}
				return eris.Wrap(err, "watcher: fsnotify")
			case <-timer.C:
				select {
				case trigger <- struct{}{}:
				default: // a run is already pending
				}
			}
		}
	})

	g.Go(func() error {
		for range trigger {
			if err := fn(gctx); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
