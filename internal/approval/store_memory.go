package approval

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// MemoryActionStore — потокобезопасное in-memory хранилище заявок.
// Порядок вставки сохраняется отдельным слайсом: листинг должен быть
// детерминированным (мапа в Go такого не гарантирует).
type MemoryActionStore struct {
	mu      sync.RWMutex
	actions map[string]*domain.Action
	order   []string
}

func NewMemoryActionStore() *MemoryActionStore {
	return &MemoryActionStore{
		actions: make(map[string]*domain.Action),
	}
}

func (s *MemoryActionStore) List(_ context.Context, statuses ...domain.ActionStatus) ([]*domain.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Пустой слайс вместо nil, чтобы в JSON был [] вместо null
	out := make([]*domain.Action, 0, len(s.order))
	for _, id := range s.order {
		a := s.actions[id]
		if len(statuses) > 0 && !statusMatch(a.Status, statuses) {
			continue
		}
		out = append(out, a.Clone())
	}
	return out, nil
}

func (s *MemoryActionStore) Get(_ context.Context, id string) (*domain.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.actions[id]
	if !ok {
		return nil, ErrActionNotFound
	}
	return a.Clone(), nil
}

func (s *MemoryActionStore) Insert(_ context.Context, a *domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actions[a.ID]; ok {
		return ErrDuplicateID
	}
	s.actions[a.ID] = a.Clone()
	s.order = append(s.order, a.ID)
	return nil
}

// RecordDecision — compare-and-swap по статусу под общим локом.
// Первый, кто застал pending, побеждает; второй получает ErrAlreadyDecided.
func (s *MemoryActionStore) RecordDecision(_ context.Context, id string, status domain.ActionStatus, approverID, comment string, at time.Time) (*domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actions[id]
	if !ok {
		return nil, ErrActionNotFound
	}
	if err := a.CanTransitionTo(status); err != nil {
		return nil, err
	}

	a.Status = status
	a.ApprovedBy = &approverID
	a.ApprovedAt = &at
	a.ApproverComment = comment
	return a.Clone(), nil
}

func statusMatch(s domain.ActionStatus, want []domain.ActionStatus) bool {
	for _, w := range want {
		if s == w {
			return true
		}
	}
	return false
}
