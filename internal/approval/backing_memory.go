package approval

import (
	"context"
	"sync"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// In-memory реализации внешних хранилищ компаний и пользователей.
// Используются в демо-режиме (без Postgres) и в тестах ядра.

type MemoryCompanyStore struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company
}

func NewMemoryCompanyStore() *MemoryCompanyStore {
	return &MemoryCompanyStore{companies: make(map[string]*domain.Company)}
}

func (s *MemoryCompanyStore) InsertCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[c.ID]; ok {
		return ErrDuplicateCompany
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *MemoryCompanyStore) FindCompany(_ context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.CorporateUser
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.CorporateUser)}
}

func (s *MemoryUserStore) InsertUser(_ context.Context, u *domain.CorporateUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicateID
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryUserStore) FindUser(_ context.Context, id string) (*domain.CorporateUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) UpdateUserStatus(_ context.Context, id string, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = status
	return nil
}

// All возвращает копии всех пользователей (нужно тестам и демо-листингу).
func (s *MemoryUserStore) All() []*domain.CorporateUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CorporateUser, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out
}
