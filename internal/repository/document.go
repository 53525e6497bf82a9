package repository

import (
	"context"

	"mellowmark/internal/domain"
)

// DocumentRepository persists owner-scoped documents.
type DocumentRepository interface {
	// Upsert overwrites the content of (ownerID, title) or inserts it.
	Upsert(ctx context.Context, ownerID, title, content string) error
	Find(ctx context.Context, ownerID, title string) (*domain.Document, error)
	List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error)
}
