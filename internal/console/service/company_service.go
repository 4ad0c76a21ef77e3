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
	"github.com/xela07ax/corpadmin-portal/internal/gateway"
)

// CompanyDirectory Описываем, что нам нужно от хранилища компаний
type CompanyDirectory interface {
	ListCompanies(ctx context.Context, search string, page, limit int) ([]*domain.Company, error)
	FindCompany(ctx context.Context, id string) (*domain.Company, error)
}

type CompanyService struct {
	repo      CompanyDirectory
	approvals *approval.Service
	bank      gateway.Client
	auditor   audit.Auditor
	logger    *zap.Logger
}

func NewCompanyService(repo CompanyDirectory, approvals *approval.Service, bank gateway.Client, auditor audit.Auditor, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:      repo,
		approvals: approvals,
		bank:      bank,
		auditor:   auditor,
		logger:    logger.Named("company-service"),
	}
}

func (s *CompanyService) List(ctx context.Context, search string, page, limit int) ([]*domain.Company, error) {
	return s.repo.ListCompanies(ctx, search, page, limit)
}

func (s *CompanyService) Get(ctx context.Context, id string) (*domain.Company, error) {
	return s.repo.FindCompany(ctx, id)
}

// ProposeOnboarding заводит pending-заявку на онбординг компании.
// Сама компания появится в справочнике только после одобрения вторым администратором.
func (s *CompanyService) ProposeOnboarding(ctx context.Context, p domain.CompanyOnboardingPayload, makerID string) (*domain.Action, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode onboarding payload: %w", err)
	}

	a, err := s.approvals.Propose(ctx, domain.ActionCompanyOnboarding, raw, makerID)
	if err != nil {
		return nil, err
	}

	s.auditPropose(makerID, a)
	return a, nil
}

// RegisterWithBank отправляет уже одобренную компанию во внешний банковский шлюз.
// Вызов идет через ReliabilityWrapper: ограничение частоты, предохранитель, ретраи.
func (s *CompanyService) RegisterWithBank(ctx context.Context, companyID, adminID string) ([]byte, error) {
	started := time.Now()

	company, err := s.repo.FindCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(company)
	if err != nil {
		return nil, fmt.Errorf("failed to encode company: %w", err)
	}

	resp, err := s.bank.Submit(ctx, gateway.OpRegisterCompany, raw)

	status := audit.StatusSuccess
	errMsg := ""
	if err != nil {
		status = audit.StatusFailed
		errMsg = err.Error()
		s.logger.Warn("bank gateway call failed",
			zap.String("company_id", companyID), zap.Error(err))
	}
	if s.auditor != nil {
		s.auditor.Log(audit.Event{
			ID:         uuid.NewString(),
			ActorID:    adminID,
			Action:     audit.ActionGatewayProxy,
			Entity:     "company",
			EntityID:   companyID,
			Detail:     map[string]interface{}{"op": gateway.OpRegisterCompany},
			Status:     status,
			Error:      errMsg,
			Timestamp:  time.Now(),
			DurationMs: time.Since(started).Milliseconds(),
		})
	}

	return resp, err
}

func (s *CompanyService) auditPropose(makerID string, a *domain.Action) {
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
