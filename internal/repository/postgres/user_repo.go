package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

const userColumns = `id, name, email, phone, role, status, company_id, company_name, created_at, last_login`

func (r *Repo) InsertUser(ctx context.Context, u *domain.CorporateUser) error {
	query := `INSERT INTO corporate_users (` + userColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.Role, string(u.Status),
		u.CompanyID, u.CompanyName, u.CreatedAt, u.LastLogin)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert user: %w", err)
	}
	return nil
}

func (r *Repo) FindUser(ctx context.Context, id string) (*domain.CorporateUser, error) {
	query := `SELECT ` + userColumns + ` FROM corporate_users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, approval.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}
	return u, nil
}

func (r *Repo) UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	query := `UPDATE corporate_users SET status = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("postgres: failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrUserNotFound
	}
	return nil
}

// ListUsers — выборка для таблицы пользователей, опционально по компании.
func (r *Repo) ListUsers(ctx context.Context, companyID, search string, page, limit int) ([]*domain.CorporateUser, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `SELECT ` + userColumns + ` FROM corporate_users WHERE 1=1`
	var args []interface{}
	if companyID != "" {
		args = append(args, companyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query users: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.CorporateUser, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan user: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// LockedUserIDs возвращает ID всех неактивных пользователей.
// Используется для прогрева L1 (RAM) кэша LockoutManager при старте.
func (r *Repo) LockedUserIDs(ctx context.Context) ([]string, error) {
	// Выбираем только ID, чтобы минимизировать трафик между БД и приложением
	query := `SELECT id FROM corporate_users WHERE status = 'inactive'`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch locked users: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan user id error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	return ids, nil
}

func scanUser(row rowScanner) (*domain.CorporateUser, error) {
	var u domain.CorporateUser
	var status string
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &status,
		&u.CompanyID, &u.CompanyName, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	u.Status = domain.UserStatus(status)
	return &u, nil
}
