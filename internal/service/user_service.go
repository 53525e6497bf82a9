package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mellowmark/internal/domain"
	"mellowmark/internal/repository"
)

// TokenIssuer mints a session token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService describes signup and login.
type UserService interface {
	Signup(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	cost      int
	dummyHash []byte
}

type signupInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=6"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NewUserService builds a UserService hashing passwords with the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewUserService(users repository.UserRepository, tokens TokenIssuer, cost int) (UserService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// compared against when the username is unknown so both login failures
	// take the same time
	dummy, err := bcrypt.GenerateFromPassword(passwordKey("mellowmark-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &userService{
		users:     users,
		tokens:    tokens,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

func (s *userService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	in := signupInput{Username: strings.TrimSpace(username), Password: password}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, error) {
	in := loginInput{Username: strings.TrimSpace(username), Password: password}
	if err := validateStruct(in); err != nil {
		return "", err
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, passwordKey(in.Password))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(in.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// passwordKey is the bcrypt input for a password. bcrypt rejects inputs over
// 72 bytes, so the password is first reduced to its base64 SHA-256 digest.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
