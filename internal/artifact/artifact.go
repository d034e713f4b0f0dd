// Package artifact stores opaque content-by-filename blobs under the
// workspace artifacts directory.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notegraph/notegraph/internal/apperr"
)

// Store writes, reads, and deletes artifact files. Filenames are opaque
// strings namespaced by node id, so writes are collision-free. The
// directory is created lazily on first write.
type Store struct {
	root string // absolute path to the artifacts directory
}

// NewStore creates a Store rooted at the given directory. The directory
// need not exist yet.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("artifact: resolve root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute artifacts directory.
func (s *Store) Root() string { return s.root }

// safePath resolves filename against the artifacts root and rejects any
// result that escapes it (directory traversal).
func (s *Store) safePath(filename string) (string, error) {
	if filename == "" {
		return "", apperr.New(apperr.Validation, "artifact: empty filename")
	}
	cleaned := filepath.Clean(filename)
	if filepath.IsAbs(cleaned) {
		return "", apperr.New(apperr.Validation, "artifact: absolute paths not allowed: %s", filename)
	}
	joined := filepath.Join(s.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("artifact: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", apperr.New(apperr.Validation, "artifact: path escapes workspace: %s", filename)
	}
	return abs, nil
}

// Write creates parent directories as needed and overwrites the file.
func (s *Store) Write(filename string, content []byte) error {
	abs, err := s.safePath(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir: %w", err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", filename, err)
	}
	return nil
}

// Read returns the raw bytes of the artifact, or NotFound if absent.
func (s *Store) Read(filename string) ([]byte, error) {
	abs, err := s.safePath(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.New(apperr.NotFound, "artifact: %s not found", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", filename, err)
	}
	return data, nil
}

// Delete removes the artifact. Missing-file is success.
func (s *Store) Delete(filename string) error {
	abs, err := s.safePath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("artifact: delete %s: %w", filename, err)
	}
	return nil
}
