package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
)

var (
	ErrNotFound = errors.New("otp not found or expired")
	ErrExpired  = errors.New("otp expired")
	ErrMismatch = errors.New("otp mismatch")
)

// Store — единое процессное хранилище одноразовых кодов с TTL.
// Один владелец состояния вместо разрозненных мап по обработчикам.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume проверяет код и при успехе удаляет его (одноразовость).
	Consume(ctx context.Context, email, code string) error
}

// RedisStore хранит коды в Redis: TTL истекает сам, состояние
// переживает рестарт и делится между инстансами портала.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	// Повторная выдача просто перезаписывает код и продлевает TTL
	return s.rdb.Set(ctx, infra.OTPKey(email), code, ttl).Err()
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.rdb.Get(ctx, infra.OTPKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Redis не отличает "не выдавался" от "истек" — ключа просто нет
			return ErrNotFound
		}
		return err
	}
	if stored != code {
		// Неверный код не сжигает выданный: у админа остаются попытки до TTL
		return ErrMismatch
	}
	return s.rdb.Del(ctx, infra.OTPKey(email)).Err()
}

// MemoryStore — вариант для тестов и запуска без Redis.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	code    string
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = memoryEntry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok {
		return ErrNotFound
	}
	if s.now().After(entry.expires) {
		delete(s.codes, email)
		return ErrExpired
	}
	if entry.code != code {
		return ErrMismatch
	}
	delete(s.codes, email)
	return nil
}
