package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T, repo *fakeUserRepo, issuer TokenIssuer) UserService {
	t.Helper()
	svc, err := NewUserService(repo, issuer, bcrypt.MinCost)
	require.NoError(t, err)
	return svc
}

func TestSignup_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, fakeIssuer{})

	user, err := svc.Signup(context.Background(), "  alice ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	stored := repo.byName["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), passwordKey("secret1")))
}

func TestSignupAndLogin_LongPassword(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), fakeIssuer{})
	ctx := context.Background()
	long := strings.Repeat("p", 100)

	_, err := svc.Signup(ctx, "carol", long)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol", long)
	require.NoError(t, err)

	// passwords sharing the first 72 bytes must still differ
	_, err = svc.Login(ctx, "carol", strings.Repeat("p", 99)+"q")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_Duplicate(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), fakeIssuer{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "another-secret")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     ValidationErrors
	}{
		{
			name:     "empty username",
			username: "   ",
			password: "secret1",
			want:     ValidationErrors{{Field: "username", Message: "Username is required"}},
		},
		{
			name:     "short password",
			username: "alice",
			password: "12345",
			want:     ValidationErrors{{Field: "password", Message: "Password must be at least 6 characters"}},
		},
		{
			name:     "both",
			username: "",
			password: "",
			want: ValidationErrors{
				{Field: "username", Message: "Username is required"},
				{Field: "password", Message: "Password must be at least 6 characters"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestUserService(t, repo, fakeIssuer{})

			_, err := svc.Signup(context.Background(), tt.username, tt.password)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.want, verrs)
			assert.Zero(t, repo.creates, "validation must happen before storage")
		})
	}
}

func TestSignup_StorageError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errBoom
	svc := newTestUserService(t, repo, fakeIssuer{})

	_, err := svc.Signup(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, fakeIssuer{})
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+user.ID, token)

	_, wrongPassword := svc.Login(ctx, "alice", "wrong-password")
	_, unknownUser := svc.Login(ctx, "bob", "secret1")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLogin_Validation(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo(), fakeIssuer{})

	_, err := svc.Login(context.Background(), "", "")
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, ValidationErrors{
		{Field: "username", Message: "Username is required"},
		{Field: "password", Message: "Password is required"},
	}, verrs)
}

func TestLogin_StorageAndIssuerErrors(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo, fakeIssuer{err: errBoom})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, errBoom)

	repo.getErr = errBoom
	_, err = svc.Login(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
