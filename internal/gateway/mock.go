package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// MockGateway имитирует банковский шлюз на стендах без доступа к нему.
type MockGateway struct{}

func (c *MockGateway) Submit(ctx context.Context, op string, payload []byte) ([]byte, error) {
	// Имитируем задержку 50-300мс
	latency := time.Duration(50+rand.Intn(250)) * time.Millisecond

	select {
	case <-time.After(latency):
		// Имитация работы
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	switch op {
	case OpRegisterCompany:
		return []byte(`{"status": "success", "message": "company registered"}`), nil
	case OpRegisterCorporate:
		return []byte(`{"status": "success", "message": "corporate users registered"}`), nil
	default:
		return nil, fmt.Errorf("operation %s not supported by gateway", op)
	}
}
