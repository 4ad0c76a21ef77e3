package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
)

// Delivery — канал доставки кода (email/SMS-провайдер за интерфейсом).
type Delivery interface {
	Deliver(ctx context.Context, email, code string) error
}

// LogDelivery пишет код в лог вместо реальной отправки (dev/демо режим).
type LogDelivery struct {
	logger *zap.Logger
}

func NewLogDelivery(logger *zap.Logger) *LogDelivery {
	return &LogDelivery{logger: logger.Named("otp-delivery")}
}

func (d *LogDelivery) Deliver(_ context.Context, email, code string) error {
	// Только для стендов без почтового провайдера; в проде сюда не попадаем
	d.logger.Info("mock otp delivery", zap.String("email", email), zap.String("code", code))
	return nil
}

// Issuer генерирует шестизначные коды и раздает их через Delivery.
type Issuer struct {
	store    Store
	delivery Delivery
	ttl      time.Duration
	logger   *zap.Logger
}

func NewIssuer(store Store, delivery Delivery, ttl time.Duration, logger *zap.Logger) *Issuer {
	return &Issuer{
		store:    store,
		delivery: delivery,
		ttl:      ttl,
		logger:   logger.Named("otp-issuer"),
	}
}

// Issue выпускает код, сохраняет его с TTL и инициирует доставку.
func (i *Issuer) Issue(ctx context.Context, email string) error {
	code, err := GenerateCode()
	if err != nil {
		return fmt.Errorf("otp: generate code: %w", err)
	}

	if err := i.store.Put(ctx, email, code, i.ttl); err != nil {
		return fmt.Errorf("otp: store code: %w", err)
	}

	if err := i.delivery.Deliver(ctx, email, code); err != nil {
		// Код уже лежит в хранилище и истечет по TTL; повторный Issue его перезапишет
		return fmt.Errorf("otp: deliver code: %w", err)
	}

	i.logger.Debug("otp issued", zap.String("email", email))
	return nil
}

// Verify сверяет код и гасит его при успехе.
func (i *Issuer) Verify(ctx context.Context, email, code string) error {
	return i.store.Consume(ctx, email, code)
}

// GenerateCode возвращает криптографически случайный шестизначный код.
func GenerateCode() (string, error) {
	// Диапазон 100000..999999, чтобы не терять ведущие разряды
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
