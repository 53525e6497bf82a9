package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mellowmark/internal/domain"
	"mellowmark/internal/repository"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert relies on the (owner_id, title) unique key so that concurrent saves
// never produce duplicates. The last writer wins.
func (r *DocumentRepository) Upsert(ctx context.Context, ownerID, title, content string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, owner_id, title, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (owner_id, title) DO UPDATE
SET content = excluded.content, updated_at = excluded.updated_at`,
		uuid.NewString(),
		ownerID,
		title,
		content,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Find(ctx context.Context, ownerID, title string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, title, content, created_at, updated_at
FROM documents
WHERE owner_id = ? AND title = ?`,
		ownerID,
		title,
	).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, ownerID string) ([]domain.DocumentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT title, created_at
FROM documents
WHERE owner_id = ?
ORDER BY created_at ASC, rowid ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.DocumentSummary, 0)
	for rows.Next() {
		var doc domain.DocumentSummary
		if err := rows.Scan(&doc.Title, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document summary: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
