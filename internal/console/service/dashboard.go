package service

import (
	"context"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// StatsProvider Описываем, что нам нужно от хранилища для сводки
type StatsProvider interface {
	GetPortalStats(ctx context.Context) (*domain.PortalStats, error)
}

type DashboardService struct {
	repo StatsProvider
}

func NewDashboardService(repo StatsProvider) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) GetPortalStats(ctx context.Context) (*domain.PortalStats, error) {
	return s.repo.GetPortalStats(ctx)
}
