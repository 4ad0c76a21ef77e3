package lockout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
	"go.uber.org/zap"
)

// LockedUserSource отдает ID заблокированных пользователей из БД
// (нужен только для прогрева, когда Redis пуст).
type LockedUserSource interface {
	LockedUserIDs(ctx context.Context) ([]string, error)
}

// Manager держит L1 (RAM) кэш заблокированных корпоративных пользователей.
// Источник правды — Postgres, L2 — Redis Set, синхронизация — Pub/Sub сигналы
// "userID:true|false". Горячий путь (IsLocked) не ходит дальше памяти.
type Manager struct {
	mu     sync.RWMutex
	locked map[string]struct{}

	rdb    *redis.Client
	source LockedUserSource
	logger *zap.Logger
}

func NewManager(rdb *redis.Client, source LockedUserSource, logger *zap.Logger) *Manager {
	return &Manager{
		locked: make(map[string]struct{}),
		rdb:    rdb,
		source: source,
		logger: logger.Named("lockout"),
	}
}

// Init прогревает кэш при старте: сначала Redis, при пустом Redis — из БД
// (с распределенной блокировкой, чтобы греть начал только один инстанс).
func (m *Manager) Init(ctx context.Context) error {
	ids, err := m.rdb.SMembers(ctx, infra.RedisKeyLockedUsers).Result()
	if err != nil {
		return fmt.Errorf("lockout: read redis set: %w", err)
	}

	if len(ids) == 0 && m.source != nil {
		dbIDs, err := m.source.LockedUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("lockout: warmup from db: %w", err)
		}
		ids = dbIDs
		m.warmupRedis(ctx, dbIDs)
	}

	m.mu.Lock()
	m.locked = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m.locked[id] = struct{}{}
	}
	m.mu.Unlock()

	m.logger.Info("lockout cache warmed", zap.Int("count", len(ids)))
	return nil
}

// warmupRedis заливает множество в Redis, если оно там пустое.
// SetNX гарантирует, что при одновременном старте зальет только один инстанс.
func (m *Manager) warmupRedis(ctx context.Context, ids []string) {
	ok, err := m.rdb.SetNX(ctx, infra.RedisKeyLockWarmupUsers, "processing", 30*time.Second).Result()
	if err != nil || !ok {
		return // Либо ошибка сети, либо другой инстанс уже греет кэш
	}

	count, err := m.rdb.SCard(ctx, infra.RedisKeyLockedUsers).Result()
	if err != nil {
		count = 0
		m.logger.Warn("could not check redis set size, proceeding with warm-up", zap.Error(err))
	}

	if count == 0 && len(ids) > 0 {
		m.logger.Info("redis lockout set is empty, performing warm-up from DB", zap.Int("count", len(ids)))
		pipe := m.rdb.Pipeline()
		for _, id := range ids {
			pipe.SAdd(ctx, infra.RedisKeyLockedUsers, id)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			m.logger.Error("redis warm-up failed", zap.Error(err))
		}
	}
}

// StartListener — "живучая" подписка на сигналы блокировки.
// При обрыве соединения переподписывается и пересинхронизирует состояние.
func (m *Manager) StartListener(ctx context.Context) {
	for {
		pubsub := m.rdb.Subscribe(ctx, infra.RedisChanAccountLock)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			m.logger.Error("failed to subscribe", zap.String("chan", infra.RedisChanAccountLock), zap.Error(err))
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		// Пересинхронизация при каждом успешном коннекте:
		// за время обрыва сигналы могли пройти мимо нас
		if err := m.Init(ctx); err != nil {
			m.logger.Error("resync failed on reconnect", zap.Error(err))
		}

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				m.handleSignal(msg.Payload)
			}
		}

		pubsub.Close()
		time.Sleep(time.Second)
	}
}

// handleSignal разбирает формат "userID:true|false" и обновляет кэш.
func (m *Manager) handleSignal(payload string) {
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		m.logger.Error("invalid lock signal format", zap.String("payload", payload))
		return
	}

	userID := parts[0]
	locked := parts[1] == "true" || parts[1] == "on"

	m.mu.Lock()
	defer m.mu.Unlock()
	if locked {
		m.locked[userID] = struct{}{}
	} else {
		delete(m.locked, userID)
	}
}

// IsLocked — горячий путь, только RAM.
func (m *Manager) IsLocked(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locked[userID]
	return ok
}

// BroadcastLockState обновляет Redis Set и шлет сигнал всем инстансам.
// Реализует approval.LockSignaller: применение account_unlock зовет сюда.
func (m *Manager) BroadcastLockState(ctx context.Context, userID string, locked bool) error {
	if locked {
		if err := m.rdb.SAdd(ctx, infra.RedisKeyLockedUsers, userID).Err(); err != nil {
			return fmt.Errorf("lockout: sadd: %w", err)
		}
	} else {
		if err := m.rdb.SRem(ctx, infra.RedisKeyLockedUsers, userID).Err(); err != nil {
			return fmt.Errorf("lockout: srem: %w", err)
		}
	}

	payload := fmt.Sprintf("%s:%t", userID, locked)
	if err := m.rdb.Publish(ctx, infra.RedisChanAccountLock, payload).Err(); err != nil {
		return fmt.Errorf("lockout: publish: %w", err)
	}

	// Свой кэш обновляем сразу, не дожидаясь собственного сигнала
	m.handleSignal(payload)
	return nil
}
