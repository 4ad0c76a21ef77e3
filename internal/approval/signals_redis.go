package approval

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
)

// RedisDecisionPublisher публикует решения чекера в общий канал.
// Формат сообщения "actionID:status" — тот же, что у остальных сигналов.
type RedisDecisionPublisher struct {
	rdb *redis.Client
}

func NewRedisDecisionPublisher(rdb *redis.Client) *RedisDecisionPublisher {
	return &RedisDecisionPublisher{rdb: rdb}
}

func (p *RedisDecisionPublisher) BroadcastDecision(ctx context.Context, actionID string, status domain.ActionStatus) error {
	payload := fmt.Sprintf("%s:%s", actionID, status)
	return p.rdb.Publish(ctx, infra.RedisChanApprovalDecisions, payload).Err()
}
