package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService archives uploads below a directory on the local filesystem.
type LocalService struct {
	root string
}

func NewLocalService(root string) (*LocalService, error) {
	if root == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalService{root: filepath.Clean(root)}, nil
}

func (s *LocalService) Put(ctx context.Context, key string, body io.Reader, _ PutOptions) (string, error) {
	key, err := ObjectKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, s.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	_, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("write %s: %w", key, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", key, closeErr)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("move %s into place: %w", key, err)
	}
	return dst, nil
}

var _ Service = (*LocalService)(nil)
