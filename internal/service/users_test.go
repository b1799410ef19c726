package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lamason/internal/models"
	"lamason/internal/store/memstore"
)

func newUserService() *UserService {
	svc := NewUserService(memstore.New().Users)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: " ADA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "ada@EXAMPLE.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "another-pass"})
	var cerr *ConflictError
	assert.True(t, errors.As(err, &cerr))
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newUserService()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "nope", Password: "short"})
	verr := requireValidation(t, err)
	assert.Equal(t, "Name is required", messageFor(verr, "name"))
	assert.Equal(t, "Please enter a valid email address", messageFor(verr, "email"))
	assert.Equal(t, "Password must be at least 8 characters", messageFor(verr, "password"))
}

func TestUserService_EnsureAdminOnce(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@lamason.test", "admin-password"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@lamason.test", "admin-password"))
	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
}
