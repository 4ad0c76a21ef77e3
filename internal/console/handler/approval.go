package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
)

type ApprovalHandler struct {
	service *approval.Service
}

func NewApprovalHandler(s *approval.Service) *ApprovalHandler {
	return &ApprovalHandler{service: s}
}

// ListPending возвращает очередь заявок на подпись в порядке подачи.
// GET /pending-actions
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch pending actions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

// List возвращает заявки с фильтром по статусу.
// GET /actions?status=approved
func (h *ApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []*domain.Action
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		list, err = h.service.ListByStatus(r.Context(), domain.ActionStatus(status))
	} else {
		list, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch actions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, approval.ErrActionNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch action")
		return
	}

	writeData(w, http.StatusOK, a)
}

type ProposeRequest struct {
	Type    domain.ActionType `json:"type"`
	Payload json.RawMessage   `json:"payload"`
}

// Propose создает новую заявку от имени авторизованного мейкера.
// POST /pending-actions
func (h *ApprovalHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.service.Propose(r.Context(), req.Type, req.Payload, auth.AdminID(r.Context()))
	if err != nil {
		if errors.Is(err, approval.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, approval.ErrCompanyNotFound) || errors.Is(err, approval.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}

	writeData(w, http.StatusCreated, a)
}

type DecideRequest struct {
	ActionID   string `json:"actionId"`
	ApproverID string `json:"approverId"`
	Comment    string `json:"comment"`
}

// Approve применяет эффект заявки и переводит ее в approved.
// POST /pending-actions/approve
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	a, _, err := h.service.Approve(r.Context(), req.ActionID, req.ApproverID, req.Comment)
	if err != nil {
		h.writeDecisionError(w, err)
		return
	}

	writeData(w, http.StatusOK, a)
}

// Reject переводит заявку в rejected. Эффект не применяется.
// POST /pending-actions/reject
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	a, err := h.service.Reject(r.Context(), req.ActionID, req.ApproverID, req.Comment)
	if err != nil {
		h.writeDecisionError(w, err)
		return
	}

	writeData(w, http.StatusOK, a)
}

func (h *ApprovalHandler) decodeDecision(w http.ResponseWriter, r *http.Request) (*DecideRequest, bool) {
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if req.ActionID == "" {
		writeError(w, http.StatusBadRequest, "actionId is required")
		return nil, false
	}
	// Чекер определяется токеном; approverId в теле оставлен для совместимости
	if req.ApproverID == "" {
		req.ApproverID = auth.AdminID(r.Context())
	}
	return &req, true
}

// writeDecisionError переводит доменные ошибки решения в HTTP-статусы.
func (h *ApprovalHandler) writeDecisionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, approval.ErrActionNotFound):
		writeError(w, http.StatusNotFound, "Action not found")
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, approval.ErrSelfApproval):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, approval.ErrEffectApplication):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process decision")
	}
}
