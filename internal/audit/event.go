package audit

import "time"

// Действия, которые фиксируются в журнале.
const (
	ActionSignup        = "admin.signup"
	ActionSignIn        = "admin.signin"
	ActionOTPVerify     = "admin.otp_verify"
	ActionPropose       = "action.propose"
	ActionApprove       = "action.approve"
	ActionReject        = "action.reject"
	ActionUserLock      = "user.lock"
	ActionGatewayProxy  = "gateway.submit"
)

// Статусы исхода
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusDenied  = "DENIED"
)

// Event — одна запись журнала аудита портала.
type Event struct {
	ID      string `json:"id"`       // UUID события
	ActorID string `json:"actor_id"` // Кто делал (администратор)
	Action  string `json:"action"`   // Что делал (см. константы выше)

	// На что было направлено действие
	Entity   string                 `json:"entity"`    // "action", "company", "user", "admin"
	EntityID string                 `json:"entity_id"` // ID сущности
	Detail   map[string]interface{} `json:"detail"`    // Контекст (комментарий чекера, пропущенные пользователи и т.д.)

	// Результат
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}
