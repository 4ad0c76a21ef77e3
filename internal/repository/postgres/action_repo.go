package postgres

/*
Файл action_repo.go содержит реализацию хранилища заявок maker-checker.
*/

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

const actionColumns = `id, type, description, initiated_by, created_at, status, approved_by, approved_at, approver_comment, payload`

// Get получение деталей заявки для анализа.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, approval.ErrActionNotFound
		}
		return nil, fmt.Errorf("postgres: get action: %w", err)
	}
	return a, nil
}

// List фильтрация и выборка заявок (Decision Queue) в порядке подачи.
func (r *Repo) List(ctx context.Context, statuses ...domain.ActionStatus) ([]*domain.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions`

	var args []interface{}
	if len(statuses) > 0 {
		vals := make([]string, 0, len(statuses))
		for _, s := range statuses {
			vals = append(vals, string(s))
		}
		query += " WHERE status = ANY($1)"
		args = append(args, vals)
	}

	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query actions: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]*domain.Action, 0)

	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan action: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	return results, nil
}

// Insert создает pending-запись. Коллизия id — баг генератора, отдаем её наверх.
func (r *Repo) Insert(ctx context.Context, a *domain.Action) error {
	query := `INSERT INTO actions (id, type, description, initiated_by, created_at, status, approver_comment, payload)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		a.ID, string(a.Type), a.Description, a.InitiatedBy, a.CreatedAt, string(a.Status), a.ApproverComment, a.Payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return approval.ErrDuplicateID
		}
		return fmt.Errorf("postgres: failed to insert action: %w", err)
	}
	return nil
}

// RecordDecision атомарно фиксирует решение чекера.
// Условие WHERE status = 'pending' предотвращает Double Decision:
// второй конкурирующий UPDATE не найдет строку и различит причину отдельным SELECT.
func (r *Repo) RecordDecision(ctx context.Context, id string, status domain.ActionStatus, approverID, comment string, at time.Time) (*domain.Action, error) {
	query := `
		UPDATE actions
		SET status = $1,
		    approved_by = $2,
		    approved_at = $3,
		    approver_comment = $4
		WHERE id = $5 AND status = 'pending'
		RETURNING ` + actionColumns

	row := r.pool.QueryRow(ctx, query, string(status), approverID, at, comment, id)
	a, err := scanAction(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: failed to record decision: %w", err)
	}

	// Строк не найдено: либо ID неверный, либо решение уже было принято ранее.
	// Разбираемся, что именно, чтобы вызывающий получил точную ошибку.
	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM actions WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, approval.ErrActionNotFound
		}
		return nil, fmt.Errorf("postgres: failed to resolve decision conflict: %w", err)
	}
	return nil, domain.ErrAlreadyDecided
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*domain.Action, error) {
	var a domain.Action
	var actionType, status string
	var approvedBy sql.NullString
	var approvedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&actionType,
		&a.Description,
		&a.InitiatedBy,
		&a.CreatedAt,
		&status,
		&approvedBy,
		&approvedAt,
		&a.ApproverComment,
		&a.Payload,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.ActionType(actionType)
	a.Status = domain.ActionStatus(status)

	// Маппим NULL значения (если есть)
	if approvedBy.Valid {
		val := approvedBy.String
		a.ApprovedBy = &val
	}
	if approvedAt.Valid {
		val := approvedAt.Time
		a.ApprovedAt = &val
	}

	return &a, nil
}
