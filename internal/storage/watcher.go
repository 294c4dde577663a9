package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent reports that the backing file of a FileStore changed on disk
type ChangeEvent struct {
	Path    string
	Removed bool // true when the file no longer exists
}

// Watcher monitors a FileStore's file for changes made by other processes,
// e.g. `graphterm logout` run from another shell
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	stopOnce  sync.Once

	Events chan ChangeEvent
	Errors chan error
	done   chan struct{}
}

// Watch creates a watcher for the store's file. The parent directory is
// watched because the file is replaced by rename on every write.
func (s *FileStore) Watch() (*Watcher, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      s.path,
		Events:    make(chan ChangeEvent, 16),
		Errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// watchLoop handles fsnotify events
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			removed := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
			if !removed && event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.Events <- ChangeEvent{Path: w.path, Removed: removed}:
			default:
				// Event channel full, a pending event already signals the change
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// Error channel full, drop
			}
		}
	}
}
