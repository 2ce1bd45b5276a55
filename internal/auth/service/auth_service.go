package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
	"github.com/chibyk-cyber/pro-shop/internal/auth/repository"
)

const MinPasswordLength = 6

type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}

// AdminPolicy decides which emails are granted the admin role.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

type AuthService struct {
	repo   UserRepository
	admins AdminPolicy
	params HashParams
	log    *slog.Logger
}

func NewAuthService(repo UserRepository, admins AdminPolicy, params HashParams, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		admins: admins,
		params: params,
		log:    log.With(slog.String("component", "auth")),
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("password", "is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hash, err := HashPassword(password, s.params)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         s.roleFor(email),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperr.Auth(apperr.AuthDuplicateUser, "an account with this email already exists")
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("password", "is required")
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Auth(apperr.AuthInvalidCredentials, "invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	ok, err := VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for %s: %w", u.ID, err)
	}
	if !ok {
		return nil, apperr.Auth(apperr.AuthInvalidCredentials, "invalid email or password")
	}

	// admin_emails may change between restarts
	if want := s.roleFor(u.Email); want != u.Role {
		if err := s.repo.UpdateRole(ctx, u.ID, want); err != nil {
			s.log.WarnContext(ctx, "role sync failed", slog.String("user_id", u.ID), slog.String("error", err.Error()))
		} else {
			u.Role = want
		}
	}
	return u, nil
}

func (s *AuthService) roleFor(email string) domain.Role {
	if s.admins != nil && s.admins.IsAdmin(email) {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.Validation("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email", "is not a valid address")
	}
	return strings.ToLower(email), nil
}
