package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes images to a directory on the local filesystem
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Save writes data as dir/<id>_<filename> and returns that path. Every call
// gets a fresh name, so records never share a file.
func (s *LocalStore) Save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}

	path := filepath.Join(s.dir, uniqueName(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// Remove deletes path if it exists as a local file. Remote URLs and
// missing files are ignored.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
