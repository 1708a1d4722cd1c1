package textdoc

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDelay = 100 * time.Millisecond

// Watcher reports changes made to a document file by other programs. It
// watches the parent directory so editors that replace the file by rename
// are noticed too.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	events chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching path.
func NewWatcher(path string, log zerolog.Logger) (*Watcher, error) {
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

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    abs,
		watcher: fw,
		log:     log,
		events:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events receives a value after the file was written, created, renamed or
// removed. Bursts of events are coalesced.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.notify)
}

func (w *Watcher) notify() {
	if w.ctx.Err() != nil {
		return
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}
