package otp

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStoreConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "admin@bank.test", "123456", time.Minute))

	t.Run("wrong code keeps the otp", func(t *testing.T) {
		assert.ErrorIs(t, store.Consume(ctx, "admin@bank.test", "000000"), ErrMismatch)
		// Код не сгорел, верная попытка еще возможна
		assert.NoError(t, store.Consume(ctx, "admin@bank.test", "123456"))
	})

	t.Run("otp is single use", func(t *testing.T) {
		assert.ErrorIs(t, store.Consume(ctx, "admin@bank.test", "123456"), ErrNotFound)
	})

	t.Run("unknown email", func(t *testing.T) {
		assert.ErrorIs(t, store.Consume(ctx, "ghost@bank.test", "123456"), ErrNotFound)
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(ctx, "admin@bank.test", "123456", 5*time.Minute))

	current = current.Add(6 * time.Minute)
	assert.ErrorIs(t, store.Consume(ctx, "admin@bank.test", "123456"), ErrExpired)

	// После истечения запись удалена
	assert.ErrorIs(t, store.Consume(ctx, "admin@bank.test", "123456"), ErrNotFound)
}

func TestGenerateCode(t *testing.T) {
	format := regexp.MustCompile(`^\d{6}$`)
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, format, code)
		seen[code] = struct{}{}
	}
	// Совпадения возможны, но 50 одинаковых кодов — поломанный генератор
	assert.Greater(t, len(seen), 1)
}

// captureDelivery сохраняет выданные коды вместо их отправки.
type captureDelivery struct {
	mu    sync.Mutex
	codes map[string]string
}

func (d *captureDelivery) Deliver(_ context.Context, email, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes[email] = code
	return nil
}

func TestIssuerRoundTrip(t *testing.T) {
	ctx := context.Background()
	delivery := &captureDelivery{codes: make(map[string]string)}
	issuer := NewIssuer(NewMemoryStore(), delivery, 5*time.Minute, zap.NewNop())

	require.NoError(t, issuer.Issue(ctx, "admin@bank.test"))

	code, ok := delivery.codes["admin@bank.test"]
	require.True(t, ok, "код должен уйти через Delivery")

	assert.Error(t, issuer.Verify(ctx, "admin@bank.test", "000000"))
	assert.NoError(t, issuer.Verify(ctx, "admin@bank.test", code))
	assert.Error(t, issuer.Verify(ctx, "admin@bank.test", code), "код одноразовый")
}
