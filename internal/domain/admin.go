package domain

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAdminExists — администратор с таким email уже зарегистрирован.
var ErrAdminExists = errors.New("admin already exists")

// AdminRole разделяет права двух администраторов портала.
type AdminRole string

const (
	RoleMaker      AdminRole = "maker"      // Admin 1: инициирует изменения
	RoleAuthorizer AdminRole = "authorizer" // Admin 2: утверждает/отклоняет
)

// Admin — администратор портала (не путать с CorporateUser).
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         AdminRole `json:"role"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"` // Никогда не отправляем на фронт
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminClaims struct {
	AdminID string    `json:"admin_id"`
	Role    AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// SignupRequest — регистрация нового администратора портала.
// Роль по умолчанию — maker; authorizer назначается явно.
type SignupRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Password string    `json:"password"`
	Role     AdminRole `json:"role"`
}

// Secure Token Issuing
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
