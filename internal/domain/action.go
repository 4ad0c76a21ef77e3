package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Статусы State Machine заявки maker-checker
type ActionStatus string

const (
	StatusPending  ActionStatus = "pending"
	StatusApproved ActionStatus = "approved"
	StatusRejected ActionStatus = "rejected"
)

// ActionType определяет вид предлагаемого изменения.
// Неизвестные типы не роняют обработку: они хранятся и применяются «вхолостую».
type ActionType string

const (
	ActionCompanyOnboarding ActionType = "company_onboarding"
	ActionMandateUpdate     ActionType = "mandate_update"
	ActionAccountUnlock     ActionType = "account_unlock"
)

var (
	ErrInvalidTransition = errors.New("invalid action status transition")
	ErrAlreadyDecided    = errors.New("action already decided")
)

// Action — единица работы, требующая подтверждения вторым администратором.
// Создатель (maker) фиксируется в InitiatedBy, решивший (checker) — в ApprovedBy.
type Action struct {
	ID          string     `json:"id"`
	Type        ActionType `json:"type"`
	Description string     `json:"description"`
	InitiatedBy string     `json:"initiatedBy"`
	CreatedAt   time.Time  `json:"createdAt"`

	Status ActionStatus `json:"status"`

	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApproverComment string     `json:"approverComment"`

	// Форма зависит от Type, валидируется при создании заявки
	Payload json.RawMessage `json:"payload"`
}

// CanTransitionTo проверяет правила конечного автомата.
// Разрешен единственный переход: pending -> approved|rejected.
func (a *Action) CanTransitionTo(next ActionStatus) error {
	if a.Status != StatusPending {
		return ErrAlreadyDecided
	}
	if next != StatusApproved && next != StatusRejected {
		return ErrInvalidTransition
	}
	return nil
}

// Clone возвращает глубокую копию, чтобы вызывающие не могли
// мутировать запись в хранилище в обход статусных проверок.
func (a *Action) Clone() *Action {
	c := *a
	if a.ApprovedBy != nil {
		v := *a.ApprovedBy
		c.ApprovedBy = &v
	}
	if a.ApprovedAt != nil {
		v := *a.ApprovedAt
		c.ApprovedAt = &v
	}
	if a.Payload != nil {
		c.Payload = append(json.RawMessage(nil), a.Payload...)
	}
	return &c
}
