package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files to a directory on disk. Refs are file names
// relative to the directory; the API serves them under /uploads/.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes data under a sanitized file name.
func (s *LocalStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	name = sanitize(name)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	return name, nil
}

// Remove deletes the file. Missing files are not an error.
func (s *LocalStore) Remove(_ context.Context, ref string) error {
	path := filepath.Join(s.dir, sanitize(ref))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}

// URL returns the serving path for the file.
func (s *LocalStore) URL(_ context.Context, ref string) (string, error) {
	return "/uploads/" + sanitize(ref), nil
}

// Dir returns the storage directory, for mounting the static file route.
func (s *LocalStore) Dir() string {
	return s.dir
}

// sanitize strips any path components so refs cannot escape the dir.
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}
