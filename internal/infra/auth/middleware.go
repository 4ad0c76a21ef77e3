package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — интерфейс, за которым прячется проверка RS256 токенов
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.AdminClaims, error)
}

type ctxKey string

const (
	// CtxAdminID — ID аутентифицированного администратора в контексте запроса
	CtxAdminID ctxKey = "admin_id"
	// CtxAdminRole — роль (maker / authorizer)
	CtxAdminRole ctxKey = "admin_role"
)

// AdminID достает ID администратора из контекста запроса.
func AdminID(ctx context.Context) string {
	id, _ := ctx.Value(CtxAdminID).(string)
	return id
}

// AdminRole достает роль администратора из контекста запроса.
func AdminRole(ctx context.Context) domain.AdminRole {
	role, _ := ctx.Value(CtxAdminRole).(domain.AdminRole)
	return role
}

func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем данные в контекст
			ctx := context.WithValue(r.Context(), CtxAdminID, claims.AdminID)
			ctx = context.WithValue(ctx, CtxAdminRole, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
