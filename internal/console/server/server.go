package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/corpadmin-portal/internal/console/handler"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
)

type PortalServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Интерфейс для проверки токенов (RS256)
	// Реализуется через embedding BaseValidator в AuthService
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler     *handler.AuthHandler      // /auth
	approvalHandler *handler.ApprovalHandler  // /pending-actions (maker-checker)
	companyHandler  *handler.CompanyHandler   // /companies
	userHandler     *handler.UserHandler      // /users
	dashHandler     *handler.DashboardHandler // /dashboard
	auditHandler    *handler.AuditHandler     // /audit (Logs)
}

// NewPortalServer инициализирует сервер админки со всеми зависимостями
func NewPortalServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	approvalH *handler.ApprovalHandler,
	companyH *handler.CompanyHandler,
	userH *handler.UserHandler,
	dashH *handler.DashboardHandler,
	auditH *handler.AuditHandler,
) *PortalServer {
	s := &PortalServer{
		router:          chi.NewRouter(),
		logger:          logger.Named("portal-api"),
		cfg:             cfg,
		authValidator:   validator,
		authHandler:     authH,
		approvalHandler: approvalH,
		companyHandler:  companyH,
		userHandler:     userH,
		dashHandler:     dashH,
		auditHandler:    auditH,
	}

	s.routes()
	return s
}

func (s *PortalServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Вход двумя шагами: пароль, затем одноразовый код
		r.Post("/auth/signup", s.authHandler.Signup)
		r.Post("/auth/signin", s.authHandler.SignIn)
		r.Post("/auth/verify", s.authHandler.Verify)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		// Подключаем универсальный Middleware только для этой группы
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		r.Get("/auth/profile", s.authHandler.Profile)

		// Dashboard & Stats
		r.Get("/dashboard/stats", s.dashHandler.GetStats)

		// Maker-checker: очередь заявок и решения по ним
		r.Route("/pending-actions", func(r chi.Router) {
			r.Get("/", s.approvalHandler.ListPending) // Очередь на подпись
			r.Post("/", s.approvalHandler.Propose)    // Новая заявка (мейкер)
			r.Post("/approve", s.approvalHandler.Approve)
			r.Post("/reject", s.approvalHandler.Reject)
		})

		// История заявок (любой статус)
		r.Route("/actions", func(r chi.Router) {
			r.Get("/", s.approvalHandler.List)
			r.Get("/{id}", s.approvalHandler.Get)
		})

		// Компании
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.companyHandler.List)
			r.Post("/", s.companyHandler.Onboard) // Заявка на онбординг
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.companyHandler.Get)
				r.Post("/register", s.companyHandler.Register) // Проксирование в банковский шлюз
			})
		})

		// Корпоративные пользователи
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.userHandler.List)
			r.Post("/", s.userHandler.AddToMandate) // Заявка в мандат компании
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.userHandler.Get)
				r.Post("/lock", s.userHandler.Lock)            // Мгновенная блокировка (Kill-switch)
				r.Post("/unlock", s.userHandler.RequestUnlock) // Заявка на разблокировку
				r.Get("/lock-state", s.userHandler.LockState)
			})
		})

		// Аудит и Логи (Observability)
		r.Get("/audit", s.auditHandler.GetLogs)
	})
}

// ServeHTTP позволяет использовать PortalServer как стандартный http.Handler
func (s *PortalServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
