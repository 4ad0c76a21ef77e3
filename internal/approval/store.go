package approval

import (
	"context"
	"errors"
	"time"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

var (
	ErrActionNotFound = errors.New("action not found")
	ErrDuplicateID    = errors.New("action id already exists")

	ErrCompanyNotFound  = errors.New("company not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateCompany = errors.New("company id already exists")
)

// ActionStore владеет записями заявок на всем их жизненном цикле.
// Реализации: in-memory (тесты, демо) и Postgres.
type ActionStore interface {
	// List возвращает заявки в порядке создания, опционально фильтруя по статусам.
	List(ctx context.Context, statuses ...domain.ActionStatus) ([]*domain.Action, error)
	Get(ctx context.Context, id string) (*domain.Action, error)
	// Insert сохраняет новую заявку. ErrDuplicateID при коллизии — это баг генератора.
	Insert(ctx context.Context, a *domain.Action) error
	// RecordDecision атомарно переводит pending-заявку в терминальный статус.
	// Второе решение по той же заявке обязано вернуть domain.ErrAlreadyDecided,
	// неизвестный id — ErrActionNotFound.
	RecordDecision(ctx context.Context, id string, status domain.ActionStatus, approverID, comment string, at time.Time) (*domain.Action, error)
}

// CompanyStore — контракт внешнего хранилища компаний (коллаборатор Effect Applier).
type CompanyStore interface {
	InsertCompany(ctx context.Context, c *domain.Company) error
	FindCompany(ctx context.Context, id string) (*domain.Company, error)
}

// UserStore — контракт внешнего хранилища пользователей.
type UserStore interface {
	InsertUser(ctx context.Context, u *domain.CorporateUser) error
	FindUser(ctx context.Context, id string) (*domain.CorporateUser, error)
	UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error
}
