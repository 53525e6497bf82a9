package domain

import "time"

// Document is a titled markdown file owned by a single user.
// (OwnerID, Title) identifies a document.
type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentSummary is the listing view of a document, without its content.
type DocumentSummary struct {
	Title     string
	CreatedAt time.Time
}
