package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
	"github.com/chibyk-cyber/pro-shop/internal/logger"
)

func newService(admins ...string) (*AuthService, *mockUserRepository) {
	repo := newMockUserRepository()
	return NewAuthService(repo, adminList(admins), cheapParams, logger.Discard()), repo
}

func TestRegister_Success(t *testing.T) {
	svc, repo := newService()

	u, err := svc.Register(context.Background(), " Ada@Example.com ", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.NotContains(t, u.PasswordHash, "secret1")
	assert.Contains(t, repo.byEmail, "ada@example.com")
}

func TestRegister_AdminEmail(t *testing.T) {
	svc, _ := newService("boss@example.com")

	u, err := svc.Register(context.Background(), "boss@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
}

func TestRegister_Validation(t *testing.T) {
	svc, repo := newService()
	tests := []struct {
		name, email, password string
	}{
		{"empty email", "", "secret1"},
		{"bad email", "not-an-email", "secret1"},
		{"empty password", "ada@example.com", ""},
		{"short password", "ada@example.com", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, repo.byEmail)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ADA@example.com", "another")
	reason, ok := apperr.AuthReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.AuthDuplicateUser, reason)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newService()
	registered, err := svc.Register(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "Ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	for _, tc := range [][2]string{{"ada@example.com", "wrong-pass"}, {"nobody@example.com", "secret1"}} {
		_, err := svc.Login(context.Background(), tc[0], tc[1])
		reason, ok := apperr.AuthReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, apperr.AuthInvalidCredentials, reason)
	}
}

func TestLogin_PromotesNewAdmin(t *testing.T) {
	svc, repo := newService()
	_, err := svc.Register(context.Background(), "boss@example.com", "secret1")
	require.NoError(t, err)

	promoted := NewAuthService(repo, adminList{"boss@example.com"}, cheapParams, logger.Discard())
	u, err := promoted.Login(context.Background(), "boss@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, domain.RoleAdmin, repo.byEmail["boss@example.com"].Role)
}

func TestLogin_RepositoryError(t *testing.T) {
	svc, repo := newService()
	repo.err = errors.New("db down")

	_, err := svc.Login(context.Background(), "ada@example.com", "secret1")
	assert.ErrorContains(t, err, "db down")
	_, isAuth := apperr.AuthReasonOf(err)
	assert.False(t, isAuth)
}
