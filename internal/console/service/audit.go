package service

import (
	"context"

	"github.com/xela07ax/corpadmin-portal/internal/audit"
)

// AuditReader Описываем, что нам нужно от хранилища журнала
type AuditReader interface {
	FetchLogs(ctx context.Context, actorID, entity string) ([]audit.Event, error)
}

type AuditService struct {
	repo AuditReader
}

func NewAuditService(repo AuditReader) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) FetchLogs(ctx context.Context, actorID, entity string) ([]audit.Event, error) {
	return s.repo.FetchLogs(ctx, actorID, entity)
}
