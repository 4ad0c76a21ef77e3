package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// ErrValidation — некорректные данные заявки; инициатор должен исправить ввод.
var ErrValidation = errors.New("invalid proposal payload")

// Factory собирает новую pending-заявку из предложения мейкера.
// Валидация payload происходит здесь, при создании, а не в момент применения.
type Factory struct {
	store     ActionStore
	companies CompanyStore
	users     UserStore

	now   func() time.Time
	newID func() string
}

func NewFactory(store ActionStore, companies CompanyStore, users UserStore) *Factory {
	return &Factory{
		store:     store,
		companies: companies,
		users:     users,
		now:       time.Now,
		newID:     func() string { return "action-" + uuid.New().String() },
	}
}

// Propose валидирует payload по типу заявки и кладет pending-запись в хранилище.
// Никаких побочных эффектов в хранилищах компаний/пользователей здесь нет.
func (f *Factory) Propose(ctx context.Context, t domain.ActionType, payload json.RawMessage, initiatedBy string) (*domain.Action, error) {
	if initiatedBy == "" {
		return nil, fmt.Errorf("%w: initiatedBy is required", ErrValidation)
	}

	description, err := f.validate(ctx, t, payload)
	if err != nil {
		return nil, err
	}

	a := &domain.Action{
		ID:          f.newID(),
		Type:        t,
		Description: description,
		InitiatedBy: initiatedBy,
		CreatedAt:   f.now().UTC(),
		Status:      domain.StatusPending,
		Payload:     append(json.RawMessage(nil), payload...),
	}

	if err := f.store.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("factory: insert action: %w", err)
	}
	return a, nil
}

func (f *Factory) validate(ctx context.Context, t domain.ActionType, payload json.RawMessage) (string, error) {
	switch t {
	case domain.ActionCompanyOnboarding:
		var p domain.CompanyOnboardingPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if p.Company.Name == "" || p.Company.Email == "" {
			return "", fmt.Errorf("%w: company name and email are required", ErrValidation)
		}
		return "New company onboarding: " + p.Company.Name, nil

	case domain.ActionMandateUpdate:
		var p domain.MandateUpdatePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if p.Action != domain.MandateAddUser {
			return "", fmt.Errorf("%w: unsupported mandate action %q", ErrValidation, p.Action)
		}
		if p.User.Name == "" || p.User.Email == "" {
			return "", fmt.Errorf("%w: user name and email are required", ErrValidation)
		}
		company, err := f.companies.FindCompany(ctx, p.CompanyID)
		if err != nil {
			if errors.Is(err, ErrCompanyNotFound) {
				return "", fmt.Errorf("%w: %s", ErrCompanyNotFound, p.CompanyID)
			}
			return "", fmt.Errorf("factory: resolve company: %w", err)
		}
		return "Mandate update: Add new user to " + company.Name, nil

	case domain.ActionAccountUnlock:
		var p domain.AccountUnlockPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if p.UserID == "" {
			return "", fmt.Errorf("%w: userId is required", ErrValidation)
		}
		if _, err := f.users.FindUser(ctx, p.UserID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return "", fmt.Errorf("%w: %s", ErrUserNotFound, p.UserID)
			}
			return "", fmt.Errorf("factory: resolve user: %w", err)
		}
		return "Account unlock request for " + p.UserID, nil

	default:
		// Неизвестный тип принимаем как есть: он хранится и отображается,
		// а применение для него — no-op (см. Applier)
		if !json.Valid(payload) {
			return "", fmt.Errorf("%w: payload is not valid JSON", ErrValidation)
		}
		return fmt.Sprintf("Pending action of type %s", t), nil
	}
}
