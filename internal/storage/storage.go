package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for empty keys or keys escaping the archive root.
var ErrInvalidKey = errors.New("invalid object key")

// PutOptions conveys object metadata.
type PutOptions struct {
	ContentType string
	Size        int64
}

// Service archives raw uploaded files.
type Service interface {
	// Put stores body under key and returns a location describing where it went.
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (string, error)
}

// ObjectKey joins path segments into a slash separated key, dropping empty
// segments and refusing dot segments.
func ObjectKey(parts ...string) (string, error) {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		for _, seg := range strings.Split(p, "/") {
			if seg == "" || seg == "." || seg == ".." {
				return "", ErrInvalidKey
			}
		}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return "", ErrInvalidKey
	}
	return path.Join(cleaned...), nil
}
