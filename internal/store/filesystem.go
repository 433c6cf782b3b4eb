package store

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"complib/internal/library"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileSystemStore keeps one JSON file per key:
//
//	<root>/
//	  components.json
//	  config.json
//	  history.json
type FileSystemStore struct {
	root string
}

var _ library.Store = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store rooted at root, creating the directory
// if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid store key: %q", key)
	}
	return filepath.Join(s.root, key+".json"), nil
}

// Get returns the contents of <root>/<key>.json, or nil if it doesn't exist.
func (s *FileSystemStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes value using an atomic temp file + rename.
func (s *FileSystemStore) Put(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return writeFile(p, bytes.NewReader(value), int64(len(value)))
}

func (s *FileSystemStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ValidateSetup verifies that the root exists and is a writable directory.
func (s *FileSystemStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store root is not a directory: %s", s.root)
	}

	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("store root not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func (s *FileSystemStore) Close() error { return nil }

// writeFile writes data from r to destPath using atomic write (temp file + rename).
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Same directory so the rename stays on one filesystem.
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
