package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
)

// Repo — единая точка доступа к PostgreSQL для всех доменов портала.
type Repo struct {
	pool *pgxpool.Pool
}

// New создает пул соединений по настройкам из конфига.
func New(ctx context.Context, cfg infra.DatabaseConfig) (*Repo, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	return &Repo{pool: pool}, nil
}

// Ping проверяет доступность базы при старте
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close возвращает соединения пулу при остановке сервиса.
func (r *Repo) Close() {
	r.pool.Close()
}
