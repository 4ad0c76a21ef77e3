package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// InsertAdmin регистрирует нового администратора. Уникальность email
// обеспечивает constraint в БД, дубликат переводим в доменную ошибку.
func (r *Repo) InsertAdmin(ctx context.Context, a *domain.Admin) error {
	query := `INSERT INTO admins (id, name, email, phone, role, status, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Name, a.Email, a.Phone, string(a.Role), a.Status, a.PasswordHash, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAdminExists
		}
		return fmt.Errorf("postgres: failed to insert admin: %w", err)
	}
	return nil
}

func (r *Repo) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `
		SELECT id, name, email, phone, role, status, password_hash, created_at, updated_at
		FROM admins WHERE email = $1`

	a := &domain.Admin{}
	var role string
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &role, &a.Status, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Role = domain.AdminRole(role)
	return a, nil
}

func (r *Repo) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	query := `
		SELECT id, name, email, phone, role, status, password_hash, created_at, updated_at
		FROM admins WHERE id = $1`

	a := &domain.Admin{}
	var role string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &role, &a.Status, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Role = domain.AdminRole(role)
	return a, nil
}
