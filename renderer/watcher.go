package renderer

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a fixed set of files. Directories are watched
// rather than the files, so editors that save by rename are still seen.
// Changed delivers absolute paths; reloading is left to the render thread.
type Watcher struct {
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
	changed chan string
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching paths.
func NewWatcher(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		paths:   make(map[string]struct{}),
		changed: make(chan string, 16),
		done:    make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.paths[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if _, watched := w.paths[path]; !watched {
				continue
			}
			select {
			case w.changed <- path:
			default:
				// a reload for this burst is already queued
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// Changed delivers the path of each watched file that was written or created.
func (w *Watcher) Changed() <-chan string { return w.changed }

// Close stops the watcher. Later calls do nothing.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
