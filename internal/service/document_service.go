package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"mellowmark/internal/domain"
	"mellowmark/internal/repository"
	"mellowmark/internal/storage"
)

// DefaultMaxUploadBytes caps the size of an uploaded markdown file.
const DefaultMaxUploadBytes int64 = 10 << 20

// DocumentService coordinates owner-scoped document operations.
type DocumentService interface {
	Save(ctx context.Context, ownerID, title, content string) error
	Load(ctx context.Context, ownerID, title string) (*domain.Document, error)
	List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error)
	// Upload archives the raw file and saves its text under the file's base name.
	Upload(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.Document, error)
}

type documentService struct {
	docs     repository.DocumentRepository
	archive  storage.Service
	maxBytes int64
}

type saveInput struct {
	Title string `json:"title" validate:"required,max=255,excludesall=/"`
}

func NewDocumentService(docs repository.DocumentRepository, archive storage.Service, maxUploadBytes int64) DocumentService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &documentService{
		docs:     docs,
		archive:  archive,
		maxBytes: maxUploadBytes,
	}
}

func (s *documentService) Save(ctx context.Context, ownerID, title, content string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	return s.docs.Upsert(ctx, ownerID, title, content)
}

func (s *documentService) Load(ctx context.Context, ownerID, title string) (*domain.Document, error) {
	doc, err := s.docs.Find(ctx, ownerID, title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	return s.docs.List(ctx, ownerID)
}

func (s *documentService) Upload(ctx context.Context, ownerID, filename string, body io.Reader) (*domain.Document, error) {
	title := uploadTitle(filename)
	if err := validateTitle(title); err != nil {
		return nil, ValidationErrors{{Field: "file", Message: "File name is invalid"}}
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ValidationErrors{{
			Field:   "file",
			Message: fmt.Sprintf("File must be at most %d bytes", s.maxBytes),
		}}
	}
	if !utf8.Valid(data) {
		return nil, ValidationErrors{{Field: "file", Message: "File must be UTF-8 text"}}
	}

	if s.archive != nil {
		key, err := storage.ObjectKey(ownerID, title)
		if err != nil {
			return nil, fmt.Errorf("archive key: %w", err)
		}
		if _, err := s.archive.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
			ContentType: http.DetectContentType(data),
			Size:        int64(len(data)),
		}); err != nil {
			return nil, fmt.Errorf("archive upload: %w", err)
		}
	}

	content := string(data)
	if err := s.docs.Upsert(ctx, ownerID, title, content); err != nil {
		return nil, err
	}
	return &domain.Document{OwnerID: ownerID, Title: title, Content: content}, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		title = ""
	}
	return validateStruct(saveInput{Title: title})
}

// uploadTitle reduces a client supplied filename to its base name. Browsers
// on Windows may send backslash separated paths.
func uploadTitle(filename string) string {
	name := strings.ReplaceAll(filename, `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.TrimSpace(name)
}
