package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/console/service"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/gateway"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
)

type CompanyHandler struct {
	service *service.CompanyService
}

func NewCompanyHandler(s *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: s}
}

// List возвращает компании с поиском и постраничной выборкой.
// GET /companies?search=...&page=1&limit=20
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page, limit := pagination(r)

	list, err := h.service.List(r.Context(), search, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch companies")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, approval.ErrCompanyNotFound) {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch company")
		return
	}

	writeData(w, http.StatusOK, company)
}

// Onboard заводит заявку на онбординг: компания появится после одобрения.
// POST /companies
func (h *CompanyHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var p domain.CompanyOnboardingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.service.ProposeOnboarding(r.Context(), p, auth.AdminID(r.Context()))
	if err != nil {
		if errors.Is(err, approval.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create onboarding action")
		return
	}

	writeData(w, http.StatusCreated, a)
}

// Register проксирует одобренную компанию во внешний банковский шлюз.
// POST /companies/{id}/register
func (h *CompanyHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.service.RegisterWithBank(r.Context(), id, auth.AdminID(r.Context()))
	if err != nil {
		if errors.Is(err, approval.ErrCompanyNotFound) {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		var throttle *gateway.ThrottleError
		if errors.As(err, &throttle) {
			w.Header().Set("Retry-After", strconv.Itoa(int(throttle.RetryAfter.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Bank gateway is throttling requests")
			return
		}
		writeError(w, http.StatusBadGateway, "Bank gateway call failed")
		return
	}

	writeData(w, http.StatusOK, json.RawMessage(resp))
}

// pagination разбирает ?page= и ?limit= c дефолтами админки.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
