package approval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"go.uber.org/zap"
)

// Service — единственная точка входа для внешних вызовов (HTTP, будущие консьюмеры).
// Хэндлеры не трогают фабрику, движок и хранилище напрямую.
type Service struct {
	store   ActionStore
	factory *Factory
	engine  *Engine
	metrics *Metrics
	auditor audit.Auditor
	logger  *zap.Logger
}

func NewService(store ActionStore, factory *Factory, engine *Engine, metrics *Metrics, auditor audit.Auditor, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		factory: factory,
		engine:  engine,
		metrics: metrics,
		auditor: auditor,
		logger:  logger.Named("approval-service"),
	}
}

// ListPending возвращает очередь заявок, ожидающих решения, в порядке подачи.
func (s *Service) ListPending(ctx context.Context) ([]*domain.Action, error) {
	return s.store.List(ctx, domain.StatusPending)
}

// ListAll возвращает все заявки независимо от статуса.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Action, error) {
	return s.store.List(ctx)
}

// ListByStatus — выборка под фильтр админки (?status=...).
func (s *Service) ListByStatus(ctx context.Context, statuses ...domain.ActionStatus) ([]*domain.Action, error) {
	return s.store.List(ctx, statuses...)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Action, error) {
	return s.store.Get(ctx, id)
}

// Propose создает новую pending-заявку от имени мейкера.
func (s *Service) Propose(ctx context.Context, t domain.ActionType, payload json.RawMessage, initiatedBy string) (*domain.Action, error) {
	a, err := s.factory.Propose(ctx, t, payload, initiatedBy)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ProposalsTotal.WithLabelValues(string(t)).Inc()
	}
	s.refreshPendingGauge(ctx)

	s.logger.Info("action proposed",
		zap.String("action_id", a.ID),
		zap.String("type", string(t)),
		zap.String("initiated_by", initiatedBy))
	return a, nil
}

// Approve фиксирует одобрение и применяет эффект заявки.
func (s *Service) Approve(ctx context.Context, actionID, approverID, comment string) (*domain.Action, *EffectReport, error) {
	started := time.Now()
	a, report, err := s.engine.Decide(ctx, actionID, true, approverID, comment)
	if err != nil {
		return nil, nil, err
	}
	s.refreshPendingGauge(ctx)
	s.auditDecision(audit.ActionApprove, a, approverID, comment, started)
	return a, report, nil
}

// Reject фиксирует отклонение. Хранилища компаний/пользователей не трогаются.
func (s *Service) Reject(ctx context.Context, actionID, approverID, comment string) (*domain.Action, error) {
	started := time.Now()
	a, _, err := s.engine.Decide(ctx, actionID, false, approverID, comment)
	if err != nil {
		return nil, err
	}
	s.refreshPendingGauge(ctx)
	s.auditDecision(audit.ActionReject, a, approverID, comment, started)
	return a, nil
}

// auditDecision пишет принятое решение в журнал аудита.
func (s *Service) auditDecision(action string, a *domain.Action, approverID, comment string, started time.Time) {
	if s.auditor == nil {
		return
	}
	s.auditor.Log(audit.Event{
		ID:       uuid.NewString(),
		ActorID:  approverID,
		Action:   action,
		Entity:   "action",
		EntityID: a.ID,
		Detail: map[string]interface{}{
			"type":    string(a.Type),
			"comment": comment,
		},
		Status:     audit.StatusSuccess,
		Timestamp:  time.Now(),
		DurationMs: time.Since(started).Milliseconds(),
	})
}

func (s *Service) refreshPendingGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	pending, err := s.store.List(ctx, domain.StatusPending)
	if err != nil {
		return
	}
	s.metrics.PendingActions.Set(float64(len(pending)))
}
