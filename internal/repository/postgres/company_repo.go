package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

const companyColumns = `id, name, email, phone, address, rcn, tin, account_no, daily_transfer_limit, single_transfer_limit, created_at`

func (r *Repo) InsertCompany(ctx context.Context, c *domain.Company) error {
	query := `INSERT INTO companies (` + companyColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.RCN, c.TIN,
		c.AccountNo, c.DailyTransferLimit, c.SingleTransferLimit, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return approval.ErrDuplicateCompany
		}
		return fmt.Errorf("postgres: failed to insert company: %w", err)
	}
	return nil
}

func (r *Repo) FindCompany(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	var c domain.Company
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.RCN, &c.TIN,
		&c.AccountNo, &c.DailyTransferLimit, &c.SingleTransferLimit, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, approval.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("postgres: find company: %w", err)
	}
	return &c, nil
}

// ListCompanies — постраничная выборка для таблицы клиентов в админке.
func (r *Repo) ListCompanies(ctx context.Context, search string, page, limit int) ([]*domain.Company, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `SELECT ` + companyColumns + ` FROM companies`
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query companies: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.Company, 0)
	for rows.Next() {
		var c domain.Company
		err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.RCN, &c.TIN,
			&c.AccountNo, &c.DailyTransferLimit, &c.SingleTransferLimit, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan company: %w", err)
		}
		results = append(results, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}
