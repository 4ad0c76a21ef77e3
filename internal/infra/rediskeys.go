package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных портала в Redis
	RedisNamespace = "corpadmin"
)

// Ключи для Sets (состояние)
const (
	// RedisKeyLockedUsers — множество ID заблокированных корпоративных пользователей.
	// Используется для прогрева L1 (RAM) кэша LockoutManager при старте.
	RedisKeyLockedUsers     = RedisNamespace + ":users:locked_set"
	RedisKeyLockWarmupUsers = RedisNamespace + ":lock:warmup:locked_users"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanApprovalDecisions — канал для трансляции решений чекера (maker-checker).
	RedisChanApprovalDecisions = RedisNamespace + ":approvals:decisions"
	// RedisChanAccountLock — сигналы блокировки/разблокировки счетов ("userID:true|false").
	RedisChanAccountLock = RedisNamespace + ":users:lock-signal"
)

// OTPKey — ключ одноразового кода для конкретного админа.
// Единое хранилище с TTL вместо разрозненных мап в обработчиках.
func OTPKey(email string) string {
	return fmt.Sprintf("%s:otp:%s", RedisNamespace, email)
}
