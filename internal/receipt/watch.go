package receipt

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher delivers external change notifications for a FileSlot. When
// another instance replaces the slot file, the watcher reads the new
// serialized collection and hands it to the registered handler. Writes made
// through the watched slot itself are suppressed, so only genuinely
// external changes are delivered.
type FileWatcher struct {
	slot    *FileSlot
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileWatcher creates a watcher for the slot's backing file. The watch
// is placed on the containing directory because slot writes happen by
// rename, which would drop a watch on the file itself.
func NewFileWatcher(slot *FileSlot) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(slot.Path())); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching slot directory: %w", err)
	}
	return &FileWatcher{
		slot:    slot,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Start begins delivering change notifications to handler on a background
// goroutine. Each external write fires at most one handler call.
func (w *FileWatcher) Start(handler func(data []byte)) {
	go w.run(handler)
}

func (w *FileWatcher) run(handler func(data []byte)) {
	var lastSeen [sha256.Size]byte
	seen := false
	target := filepath.Clean(w.slot.Path())

	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Slot watcher error", "error", err)
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
			data, err := w.slot.Load()
			if err != nil || data == nil {
				continue
			}
			sum := sha256.Sum256(data)
			if seen && sum == lastSeen {
				continue
			}
			lastSeen = sum
			seen = true
			if w.slot.selfWrote(sum) {
				continue
			}
			handler(data)
		}
	}
}

// Close stops the watcher
func (w *FileWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
