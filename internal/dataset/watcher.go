package dataset

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog when one of its dataset files changes on disk.
// The datasets themselves stay read-only; the watcher only refreshes the
// in-memory copy.
type Watcher struct {
	catalog *Catalog
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the catalog's dataset files.
func Watch(catalog *Catalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the parent directories: editors and atomic writers replace
	// files rather than writing in place.
	dirs := map[string]bool{}
	for _, path := range []string{catalog.flightsPath, catalog.activitiesPath} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if !dirs[dir] {
			if err := fsw.Add(dir); err != nil {
				fsw.Close()
				return nil, err
			}
			dirs[dir] = true
		}
	}

	w := &Watcher{
		catalog: catalog,
		watcher: fsw,
		done:    make(chan struct{}),
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
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.catalog.Reload(); err != nil {
				// Keep serving the previous data on a bad reload.
				log.Printf("[dataset] reload after change to %s failed: %v", event.Name, err)
				continue
			}
			log.Printf("[dataset] reloaded catalog after change to %s", event.Name)
		case <-w.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	return samePath(name, w.catalog.flightsPath) || samePath(name, w.catalog.activitiesPath)
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	ra, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	rb, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return ra == rb
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
