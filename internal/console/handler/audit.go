package handler

import (
	"net/http"

	"github.com/xela07ax/corpadmin-portal/internal/console/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(s *service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

// GetLogs возвращает список событий аудита с поддержкой фильтрации
// GET /audit?actor_id=...&entity=...
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	// Извлекаем фильтры из Query-параметров
	actorID := r.URL.Query().Get("actor_id")
	entity := r.URL.Query().Get("entity")

	logs, err := h.service.FetchLogs(r.Context(), actorID, entity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": logs})
}
