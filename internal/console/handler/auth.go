package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/corpadmin-portal/internal/console/service"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Signup регистрирует нового администратора.
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignupInvalid):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAdminExists):
			writeError(w, http.StatusConflict, "Admin already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to register admin")
		}
		return
	}

	writeData(w, http.StatusCreated, admin)
}

// SignIn проверяет пароль и высылает одноразовый код.
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SignIn(r.Context(), req.Email, req.Password); err != nil {
		// не уточняем, что именно неверно (email или пароль) для защиты от перебора
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

// Verify сверяет одноразовый код и выдает RS256 токен.
// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}

	writeData(w, http.StatusOK, resp)
}

// Profile возвращает карточку текущего администратора.
// GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.Profile(r.Context(), auth.AdminID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeData(w, http.StatusOK, admin)
}
