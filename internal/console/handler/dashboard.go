package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// DashboardService Описываем, что нам нужно от сервиса
type DashboardService interface {
	GetPortalStats(ctx context.Context) (*domain.PortalStats, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(s DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats возвращает сводку для главного экрана админки.
// GET /dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPortalStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeData(w, http.StatusOK, stats)
}
