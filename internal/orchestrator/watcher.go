package orchestrator

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// digestWatcher records when digest.json appears in a run directory while
// the agent is working. It prefers fsnotify and degrades to an os.Stat
// check when no watcher can be created.
type digestWatcher struct {
	path string

	mu        sync.Mutex
	arrived   bool
	arrivedAt time.Time

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newDigestWatcher(dir string) *digestWatcher {
	w := &digestWatcher{
		path: filepath.Join(dir, "digest.json"),
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher, Arrived falls back to os.Stat.
		return w
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return w
	}
	w.watcher = watcher

	go w.watch()
	return w
}

func (w *digestWatcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				w.mu.Lock()
				if !w.arrived {
					w.arrived = true
					w.arrivedAt = time.Now()
				}
				w.mu.Unlock()
			}
		case <-w.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// Arrived reports whether digest.json has appeared and when. The file is
// stat'ed directly in case the watcher missed the event.
func (w *digestWatcher) Arrived() (bool, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.arrived {
		if fi, err := os.Stat(w.path); err == nil {
			w.arrived = true
			w.arrivedAt = fi.ModTime()
		}
	}
	return w.arrived, w.arrivedAt
}

// Close shuts the watcher down.
func (w *digestWatcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
