package postgres

import (
	"context"
	"fmt"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

// GetPortalStats собирает сводку для дашборда одним проходом по каждой таблице.
func (r *Repo) GetPortalStats(ctx context.Context) (*domain.PortalStats, error) {
	stats := &domain.PortalStats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM admins),
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM corporate_users),
			(SELECT COUNT(*) FROM corporate_users WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved' AND approved_at > NOW() - INTERVAL '24 hours'),
			COUNT(*) FILTER (WHERE status = 'rejected' AND approved_at > NOW() - INTERVAL '24 hours')
		FROM actions`

	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalAdmins,
		&stats.TotalCompanies,
		&stats.TotalUsers,
		&stats.LockedUsers,
		&stats.PendingActions,
		&stats.ApprovedToday,
		&stats.RejectedToday,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query portal stats: %w", err)
	}

	return stats, nil
}
