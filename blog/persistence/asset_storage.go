package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfryer1193/tusitala/blog/domain"
)

var _ domain.AssetStorage = (*FileStorage)(nil)

// FileStorage keeps asset binaries on the local filesystem. Stored paths are
// URL-style paths ("/uploads/temp/<owner>/<file>") resolved against root, the
// directory served as public static content.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

// Root returns the directory stored paths are resolved against
func (s *FileStorage) Root() string {
	return s.root
}

func (s *FileStorage) resolve(storedPath string) (string, error) {
	if storedPath == "" {
		return "", fmt.Errorf("stored path cannot be empty")
	}

	cleaned := filepath.Clean("/" + filepath.FromSlash(storedPath))
	full := filepath.Join(s.root, cleaned)

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", storedPath, err)
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("stored path %s escapes storage root", storedPath)
	}

	return full, nil
}

// Read returns the binary content stored at path
func (s *FileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset file: %w", err)
	}

	return content, nil
}

// Write stores content at path, creating parent directories as needed
func (s *FileStorage) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("failed to write asset file: %w", err)
	}

	return nil
}

// Remove deletes the file at path. A missing file is not an error.
func (s *FileStorage) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset file: %w", err)
	}

	return nil
}
