package facts

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher observes a fact file and invokes a callback when it changes.
// The callback is the container's controlled rebuild trigger: it runs on
// the watcher goroutine, serialized, never concurrently with itself.
type Watcher struct {
	source   *FileSource
	watcher  *fsnotify.Watcher
	onChange func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewWatcher starts watching the file behind src. Each write or rename
// reloads the source and then invokes onChange.
func NewWatcher(src *FileSource, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory; editors commonly replace the file rather than
	// write it in place, which drops a watch on the file itself.
	dir := filepath.Dir(src.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		source:   src,
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	target := filepath.Clean(w.source.Path())

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.source.Reload(); err != nil {
				log.Warn().
					Err(err).
					Str("path", target).
					Msg("Fact file changed but reload failed; keeping previous facts")
				continue
			}
			log.Debug().
				Str("path", target).
				Str("op", ev.Op.String()).
				Msg("Fact file reloaded")
			if w.onChange != nil {
				w.onChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Fact watcher error")
		}
	}
}

// Close stops watching. It is idempotent and waits for the watch
// goroutine to exit, so no callback runs after Close returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}
