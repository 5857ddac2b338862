package receipt

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSlot implements the Slot interface using a single JSON file. The
// file can be shared by several running instances; pair it with a
// FileWatcher to observe writes made by the others.
type FileSlot struct {
	path string

	mu      sync.Mutex
	lastSum [sha256.Size]byte
	wrote   bool
}

// NewFileSlot creates a new FileSlot instance
func NewFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileSlot{path: path}, nil
}

// Path returns the file backing the slot
func (f *FileSlot) Path() string {
	return f.path
}

// Load reads the serialized collection from the file
func (f *FileSlot) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot file: %w", err)
	}
	return data, nil
}

// Store writes the serialized collection to the file. The write goes
// through a temp file and rename so a concurrent reader never observes a
// partial snapshot.
func (f *FileSlot) Store(data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing slot file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing slot file: %w", err)
	}
	f.mu.Lock()
	f.lastSum = sha256.Sum256(data)
	f.wrote = true
	f.mu.Unlock()
	return nil
}

// selfWrote reports whether the given content was this instance's own most
// recent write, so a watcher can suppress the echo.
func (f *FileSlot) selfWrote(sum [sha256.Size]byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wrote && f.lastSum == sum
}

// Close is a no-op for file-backed slots
func (f *FileSlot) Close() error {
	return nil
}
