package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// UserDirectory Описываем, что нам нужно от хранилища корпоративных пользователей
type UserDirectory interface {
	ListUsers(ctx context.Context, companyID, search string, page, limit int) ([]*domain.CorporateUser, error)
	FindUser(ctx context.Context, id string) (*domain.CorporateUser, error)
	UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error
}

// LockBroadcaster рассылает сигнал блокировки всем инстансам (Redis Pub/Sub)
type LockBroadcaster interface {
	BroadcastLockState(ctx context.Context, userID string, locked bool) error
	IsLocked(userID string) bool
}

type UserService struct {
	repo      UserDirectory
	approvals *approval.Service
	locks     LockBroadcaster
	auditor   audit.Auditor
	logger    *zap.Logger
}

func NewUserService(repo UserDirectory, approvals *approval.Service, locks LockBroadcaster, auditor audit.Auditor, logger *zap.Logger) *UserService {
	return &UserService{
		repo:      repo,
		approvals: approvals,
		locks:     locks,
		auditor:   auditor,
		logger:    logger.Named("user-service"),
	}
}

func (s *UserService) List(ctx context.Context, companyID, search string, page, limit int) ([]*domain.CorporateUser, error) {
	return s.repo.ListUsers(ctx, companyID, search, page, limit)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.CorporateUser, error) {
	return s.repo.FindUser(ctx, id)
}

// ProposeMandateUpdate заводит pending-заявку на изменение мандата компании.
func (s *UserService) ProposeMandateUpdate(ctx context.Context, p domain.MandateUpdatePayload, makerID string) (*domain.Action, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mandate payload: %w", err)
	}

	a, err := s.approvals.Propose(ctx, domain.ActionMandateUpdate, raw, makerID)
	if err != nil {
		return nil, err
	}
	s.auditPropose(makerID, a)
	return a, nil
}

// ProposeUnlock заводит pending-заявку на разблокировку пользователя.
// Разблокировка всегда идет через maker-checker, в отличие от блокировки.
func (s *UserService) ProposeUnlock(ctx context.Context, p domain.AccountUnlockPayload, makerID string) (*domain.Action, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unlock payload: %w", err)
	}

	a, err := s.approvals.Propose(ctx, domain.ActionAccountUnlock, raw, makerID)
	if err != nil {
		return nil, err
	}
	s.auditPropose(makerID, a)
	return a, nil
}

// Lock мгновенно блокирует пользователя (kill-switch, без второй подписи):
// деактивация в Postgres плюс сигнал в Redis для клиентского шлюза.
func (s *UserService) Lock(ctx context.Context, userID, adminID, reason string) error {
	started := time.Now()

	if err := s.repo.UpdateUserStatus(ctx, userID, domain.UserInactive); err != nil {
		return err
	}

	if err := s.locks.BroadcastLockState(ctx, userID, true); err != nil {
		// Postgres уже обновлен, покрытие Redis догонит warmup при рестарте
		s.logger.Error("failed to broadcast lock signal",
			zap.String("user_id", userID), zap.Error(err))
	}

	if s.auditor != nil {
		s.auditor.Log(audit.Event{
			ID:         uuid.NewString(),
			ActorID:    adminID,
			Action:     audit.ActionUserLock,
			Entity:     "user",
			EntityID:   userID,
			Detail:     map[string]interface{}{"reason": reason},
			Status:     audit.StatusSuccess,
			Timestamp:  time.Now(),
			DurationMs: time.Since(started).Milliseconds(),
		})
	}
	return nil
}

// IsLocked отвечает из L1-кэша, без похода в Redis или Postgres.
func (s *UserService) IsLocked(userID string) bool {
	return s.locks.IsLocked(userID)
}

func (s *UserService) auditPropose(makerID string, a *domain.Action) {
	if s.auditor == nil {
		return
	}
	s.auditor.Log(audit.Event{
		ID:        uuid.NewString(),
		ActorID:   makerID,
		Action:    audit.ActionPropose,
		Entity:    "action",
		EntityID:  a.ID,
		Detail:    map[string]interface{}{"type": string(a.Type)},
		Status:    audit.StatusSuccess,
		Timestamp: time.Now(),
	})
}
