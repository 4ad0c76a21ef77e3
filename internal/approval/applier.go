package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"go.uber.org/zap"
)

// LockSignaller транслирует смену состояния блокировки счета в реальном времени
// Реализуется lockout.Manager; в тестах — заглушка.
type LockSignaller interface {
	BroadcastLockState(ctx context.Context, userID string, locked bool) error
}

// EffectReport перечисляет, что именно сделало (или пропустило) применение заявки.
type EffectReport struct {
	CompanyID string `json:"companyId,omitempty"`
	// Созданные пользователи
	CreatedUserIDs []string `json:"createdUserIds,omitempty"`
	// Пользователи из пачки, которых не удалось завести (email -> причина).
	// Частичный сбой не отменяет заявку, но обязан быть виден поименно.
	SkippedUsers map[string]string `json:"skippedUsers,omitempty"`
	// Разблокировка несуществующего пользователя — no-op, но флаг остается
	NoOp bool `json:"noOp,omitempty"`
}

// Applier переводит payload одобренной заявки в конкретные мутации
// хранилищ компаний/пользователей. Сам статус заявки он не трогает.
type Applier struct {
	companies CompanyStore
	users     UserStore
	signals   LockSignaller
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewApplier(companies CompanyStore, users UserStore, signals LockSignaller, logger *zap.Logger) *Applier {
	return &Applier{
		companies: companies,
		users:     users,
		signals:   signals,
		logger:    logger.Named("applier"),
		now:       time.Now,
		newID:     func() string { return "user-" + uuid.New().String() },
	}
}

// Apply применяет эффект заявки. Ошибка означает, что заявку НЕЛЬЗЯ
// помечать одобренной: approved всегда подразумевает applied.
func (ap *Applier) Apply(ctx context.Context, a *domain.Action) (*EffectReport, error) {
	switch a.Type {
	case domain.ActionCompanyOnboarding:
		return ap.applyOnboarding(ctx, a)
	case domain.ActionMandateUpdate:
		return ap.applyMandate(ctx, a)
	case domain.ActionAccountUnlock:
		return ap.applyUnlock(ctx, a)
	default:
		// Неизвестный тип: заявка решается, но ничего не мутирует
		ap.logger.Warn("no effect handler for action type, skipping",
			zap.String("action_id", a.ID),
			zap.String("type", string(a.Type)))
		return &EffectReport{NoOp: true}, nil
	}
}

func (ap *Applier) applyOnboarding(ctx context.Context, a *domain.Action) (*EffectReport, error) {
	var p domain.CompanyOnboardingPayload
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil, fmt.Errorf("onboarding payload corrupted: %w", err)
	}

	now := ap.now().UTC()
	company := &domain.Company{
		ID:                  p.Company.ID,
		Name:                p.Company.Name,
		Email:               p.Company.Email,
		Phone:               p.Company.Phone,
		Address:             p.Company.Address,
		RCN:                 p.Company.RCN,
		TIN:                 p.Company.TIN,
		AccountNo:           p.Company.AccountNo,
		DailyTransferLimit:  p.Company.DailyTransferLimit,
		SingleTransferLimit: p.Company.SingleTransferLimit,
		CreatedAt:           now,
	}
	if company.ID == "" {
		company.ID = "comp-" + uuid.New().String()
	}

	if err := ap.companies.InsertCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("insert company %s: %w", company.ID, err)
	}

	report := &EffectReport{CompanyID: company.ID}
	for _, draft := range p.Users {
		user := ap.newUser(draft, company.ID, company.Name, now)
		if err := ap.users.InsertUser(ctx, user); err != nil {
			// Частичный сбой: компания уже заведена, пропущенных отчитываем поименно
			ap.logger.Warn("bundled user skipped during onboarding",
				zap.String("action_id", a.ID),
				zap.String("company_id", company.ID),
				zap.String("email", draft.Email),
				zap.Error(err))
			if report.SkippedUsers == nil {
				report.SkippedUsers = make(map[string]string)
			}
			report.SkippedUsers[draft.Email] = err.Error()
			continue
		}
		report.CreatedUserIDs = append(report.CreatedUserIDs, user.ID)
	}
	return report, nil
}

func (ap *Applier) applyMandate(ctx context.Context, a *domain.Action) (*EffectReport, error) {
	var p domain.MandateUpdatePayload
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil, fmt.Errorf("mandate payload corrupted: %w", err)
	}
	if p.Action != domain.MandateAddUser {
		return &EffectReport{NoOp: true}, nil
	}

	// Пропавшая компания — это не тихий no-op: заявка должна остаться pending
	company, err := ap.companies.FindCompany(ctx, p.CompanyID)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, p.CompanyID)
		}
		return nil, fmt.Errorf("resolve company %s: %w", p.CompanyID, err)
	}

	user := ap.newUser(p.User, company.ID, company.Name, ap.now().UTC())
	if err := ap.users.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user for company %s: %w", company.ID, err)
	}
	return &EffectReport{CompanyID: company.ID, CreatedUserIDs: []string{user.ID}}, nil
}

func (ap *Applier) applyUnlock(ctx context.Context, a *domain.Action) (*EffectReport, error) {
	var p domain.AccountUnlockPayload
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil, fmt.Errorf("unlock payload corrupted: %w", err)
	}

	if err := ap.users.UpdateUserStatus(ctx, p.UserID, domain.UserActive); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Пользователя уже нет — считаем заявку исполненной, но фиксируем в логе
			ap.logger.Warn("unlock target missing, treating as resolved",
				zap.String("action_id", a.ID),
				zap.String("user_id", p.UserID))
			return &EffectReport{NoOp: true}, nil
		}
		return nil, fmt.Errorf("unlock user %s: %w", p.UserID, err)
	}

	// Будим кэш блокировок: шлюз должен пустить пользователя сразу,
	// не дожидаясь следующего прогрева
	if ap.signals != nil {
		if err := ap.signals.BroadcastLockState(ctx, p.UserID, false); err != nil {
			ap.logger.Warn("unlock signal delivery failed",
				zap.String("user_id", p.UserID),
				zap.Error(err))
		}
	}
	return &EffectReport{}, nil
}

func (ap *Applier) newUser(draft domain.UserDraft, companyID, companyName string, now time.Time) *domain.CorporateUser {
	return &domain.CorporateUser{
		ID:          ap.newID(),
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Role:        draft.Role,
		Status:      domain.UserActive,
		CompanyID:   companyID,
		CompanyName: companyName,
		CreatedAt:   now,
		LastLogin:   now,
	}
}
