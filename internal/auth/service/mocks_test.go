package service

import (
	"context"
	"strings"
	"sync"

	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
	"github.com/chibyk-cyber/pro-shop/internal/auth/repository"
)

type mockUserRepository struct {
	m       sync.Mutex
	byEmail map[string]*domain.User
	err     error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{byEmail: map[string]*domain.User{}}
}

func (m *mockUserRepository) CreateUser(_ context.Context, u *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	key := strings.ToLower(u.Email)
	if _, ok := m.byEmail[key]; ok {
		return repository.ErrDuplicateUser
	}
	cp := *u
	m.byEmail[key] = &cp
	return nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.Role = role
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type adminList []string

func (a adminList) IsAdmin(email string) bool {
	for _, e := range a {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

var cheapParams = HashParams{Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}
