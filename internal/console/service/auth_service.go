package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
	"github.com/xela07ax/corpadmin-portal/internal/otp"
)

// ErrInvalidCredentials возвращается при любой ошибке аутентификации.
// Не уточняем, что именно неверно (email или пароль) для защиты от перебора.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSignupInvalid — неполная анкета регистрации.
var ErrSignupInvalid = errors.New("name, email and password are required")

// AdminProvider Описываем, что нам нужно от хранилища администраторов
type AdminProvider interface {
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*domain.Admin, error)
	InsertAdmin(ctx context.Context, a *domain.Admin) error
}

type AuthService struct {
	// Embedding дает AuthService метод VerifyToken,
	// т.е. сервис сам реализует auth.TokenValidator для middleware
	*auth.BaseValidator

	repo       AdminProvider
	otp        *otp.Issuer
	privateKey *rsa.PrivateKey
	tokenTTL   time.Duration
	bcryptCost int
	auditor    audit.Auditor
	logger     *zap.Logger
}

func NewAuthService(
	repo AdminProvider,
	issuer *otp.Issuer,
	privateKey *rsa.PrivateKey,
	publicKey *rsa.PublicKey,
	tokenTTL time.Duration,
	bcryptCost int,
	auditor audit.Auditor,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		BaseValidator: auth.NewBaseValidator(publicKey),
		repo:          repo,
		otp:           issuer,
		privateKey:    privateKey,
		tokenTTL:      tokenTTL,
		bcryptCost:    bcryptCost,
		auditor:       auditor,
		logger:        logger.Named("auth-service"),
	}
}

// Register заводит нового администратора портала. Пароль хранится
// только в виде bcrypt-хеша, роль по умолчанию — maker.
func (s *AuthService) Register(ctx context.Context, req domain.SignupRequest) (*domain.Admin, error) {
	started := time.Now()

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrSignupInvalid
	}
	role := req.Role
	if role == "" {
		role = domain.RoleMaker
	}
	if role != domain.RoleMaker && role != domain.RoleAuthorizer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrSignupInvalid, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	admin := &domain.Admin{
		ID:           "admin-" + uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		Status:       "active",
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertAdmin(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrAdminExists) {
			s.audit(req.Email, audit.ActionSignup, audit.StatusDenied, started, "email taken")
		}
		return nil, err
	}

	s.audit(admin.ID, audit.ActionSignup, audit.StatusSuccess, started, "")
	return admin, nil
}

// SignIn проверяет пару email/пароль и отправляет одноразовый код.
// Токен на этом шаге НЕ выдается: вход завершается только после VerifyOTP.
func (s *AuthService) SignIn(ctx context.Context, email, password string) error {
	started := time.Now()

	// 1. Аутентификация (источник правды — Postgres)
	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil || admin == nil {
		s.audit(email, audit.ActionSignIn, audit.StatusDenied, started, "unknown email")
		return ErrInvalidCredentials
	}

	// 2. Проверка пароля (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.audit(admin.ID, audit.ActionSignIn, audit.StatusDenied, started, "password mismatch")
		return ErrInvalidCredentials
	}

	// 3. Второй фактор: код уходит через Delivery, в Redis остается копия с TTL
	if err := s.otp.Issue(ctx, email); err != nil {
		s.audit(admin.ID, audit.ActionSignIn, audit.StatusFailed, started, err.Error())
		return fmt.Errorf("failed to issue otp: %w", err)
	}

	s.audit(admin.ID, audit.ActionSignIn, audit.StatusSuccess, started, "")
	return nil
}

// VerifyOTP сверяет одноразовый код и выдает подписанный RS256 токен.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.TokenResponse, error) {
	started := time.Now()

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil || admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.otp.Verify(ctx, email, code); err != nil {
		s.audit(admin.ID, audit.ActionOTPVerify, audit.StatusDenied, started, err.Error())
		return nil, ErrInvalidCredentials
	}

	// Формирование Claims: роль мейкера/авторизатора едет внутри токена
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &domain.AdminClaims{
		AdminID: admin.ID,
		Role:    admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "corpadmin-portal",
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	// Подпись токена ЗАКРЫТЫМ КЛЮЧОМ (RS256)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.audit(admin.ID, audit.ActionOTPVerify, audit.StatusSuccess, started, "")

	return &domain.TokenResponse{
		AccessToken: signedToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Profile возвращает карточку текущего администратора.
func (s *AuthService) Profile(ctx context.Context, adminID string) (*domain.Admin, error) {
	admin, err := s.repo.GetAdminByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *AuthService) audit(actorID, action, status string, started time.Time, reason string) {
	if s.auditor == nil {
		return
	}
	e := audit.Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		Entity:     "admin",
		EntityID:   actorID,
		Status:     status,
		Error:      reason,
		Timestamp:  time.Now(),
		DurationMs: time.Since(started).Milliseconds(),
	}
	s.auditor.Log(e)
}
