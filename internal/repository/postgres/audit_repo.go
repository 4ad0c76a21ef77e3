package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xela07ax/corpadmin-portal/internal/audit"
)

// WriteBatch пакетно сохраняет события аудита (Bulk Insert одним запросом).
func (r *Repo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице audit_logs
	numFields := 10
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		detail, _ := json.Marshal(e.Detail)

		vals = append(vals,
			e.ID, e.ActorID, e.Action, e.Entity, e.EntityID,
			detail, e.Status, e.Error, e.DurationMs, e.Timestamp,
		)
	}

	// Убираем лишнюю запятую в конце
	query := fmt.Sprintf(
		"INSERT INTO audit_logs (id, actor_id, action, entity, entity_id, detail, status, error, duration_ms, timestamp) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.pool.Exec(ctx, query, vals...)
	return err
}

// FetchLogs возвращает события аудита с фильтрацией по актору и сущности.
func (r *Repo) FetchLogs(ctx context.Context, actorID, entity string) ([]audit.Event, error) {
	query := `SELECT id, actor_id, action, entity, entity_id, detail, status, error, duration_ms, timestamp
	          FROM audit_logs WHERE 1=1`

	var args []interface{}
	if actorID != "" {
		args = append(args, actorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if entity != "" {
		args = append(args, entity)
		query += fmt.Sprintf(" AND entity = $%d", len(args))
	}
	query += " ORDER BY timestamp DESC LIMIT 200"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query audit logs: %w", err)
	}
	defer rows.Close()

	results := make([]audit.Event, 0)
	for rows.Next() {
		var e audit.Event
		var detail []byte
		err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID,
			&detail, &e.Status, &e.Error, &e.DurationMs, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan audit log: %w", err)
		}
		if len(detail) > 0 {
			_ = json.Unmarshal(detail, &e.Detail)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}
