package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/console/service"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// List возвращает корпоративных пользователей с фильтром по компании.
// GET /users?companyId=...&search=...&page=1&limit=20
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")
	search := r.URL.Query().Get("search")
	page, limit := pagination(r)

	list, err := h.service.List(r.Context(), companyID, search, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, approval.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	writeData(w, http.StatusOK, user)
}

// AddToMandate заводит заявку на добавление пользователя в мандат компании.
// POST /users
func (h *UserHandler) AddToMandate(w http.ResponseWriter, r *http.Request) {
	var p domain.MandateUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p.Action == "" {
		p.Action = domain.MandateAddUser
	}

	a, err := h.service.ProposeMandateUpdate(r.Context(), p, auth.AdminID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, approval.ErrCompanyNotFound):
			writeError(w, http.StatusNotFound, "Company not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create mandate action")
		}
		return
	}

	writeData(w, http.StatusCreated, a)
}

type LockRequest struct {
	Reason string `json:"reason"`
}

// Lock мгновенно блокирует пользователя без второй подписи (kill-switch).
// POST /users/{id}/lock
func (h *UserHandler) Lock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req LockRequest
	// Тело опционально
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.Lock(r.Context(), id, auth.AdminID(r.Context()), req.Reason); err != nil {
		if errors.Is(err, approval.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to lock user")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"userId": id, "locked": true})
}

type UnlockRequest struct {
	Reason string `json:"reason"`
}

// RequestUnlock заводит заявку на разблокировку. Сам статус изменится
// только после одобрения вторым администратором.
// POST /users/{id}/unlock
func (h *UserHandler) RequestUnlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UnlockRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	a, err := h.service.ProposeUnlock(r.Context(), domain.AccountUnlockPayload{
		UserID: id,
		Reason: req.Reason,
	}, auth.AdminID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, approval.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create unlock action")
		}
		return
	}

	writeData(w, http.StatusCreated, a)
}

// LockState отвечает из L1-кэша менеджера блокировок.
// GET /users/{id}/lock-state
func (h *UserHandler) LockState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeData(w, http.StatusOK, map[string]interface{}{
		"userId": id,
		"locked": h.service.IsLocked(id),
	})
}
