package repository

import (
	"context"

	"mellowmark/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	// Create stores a new user and assigns its ID. Returns ErrConflict when
	// the username is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
