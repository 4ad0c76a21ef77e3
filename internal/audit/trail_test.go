package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStorage копирует принятые пачки (воркер переиспользует слайс).
type fakeStorage struct {
	mu      sync.Mutex
	events  []Event
	batches int
}

func (s *fakeStorage) WriteBatch(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	s.batches++
	return nil
}

func (s *fakeStorage) snapshot() ([]Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...), s.batches
}

func TestTrailStopDrainsBuffer(t *testing.T) {
	storage := &fakeStorage{}
	// Большой интервал: без Stop() ничего не должно записаться
	trail := NewTrail(storage, 100, 50, time.Hour, zap.NewNop())
	trail.Start()

	for i := 0; i < 7; i++ {
		trail.Log(Event{ID: fmt.Sprintf("evt-%d", i), Action: ActionApprove})
	}
	trail.Stop()

	events, _ := storage.snapshot()
	require.Len(t, events, 7, "Stop обязан дописать весь буфер")
	assert.Equal(t, "evt-0", events[0].ID)
	assert.Equal(t, "evt-6", events[6].ID)
}

func TestTrailFlushesByBatchSize(t *testing.T) {
	storage := &fakeStorage{}
	trail := NewTrail(storage, 100, 3, time.Hour, zap.NewNop())
	trail.Start()

	for i := 0; i < 6; i++ {
		trail.Log(Event{ID: fmt.Sprintf("evt-%d", i)})
	}

	// Две полные пачки по 3 должны уйти без участия тикера
	assert.Eventually(t, func() bool {
		events, batches := storage.snapshot()
		return len(events) == 6 && batches == 2
	}, time.Second, 10*time.Millisecond)

	trail.Stop()
}

func TestTrailFlushesByTicker(t *testing.T) {
	storage := &fakeStorage{}
	trail := NewTrail(storage, 100, 50, 20*time.Millisecond, zap.NewNop())
	trail.Start()

	trail.Log(Event{ID: "evt-0"})

	assert.Eventually(t, func() bool {
		events, _ := storage.snapshot()
		return len(events) == 1
	}, time.Second, 5*time.Millisecond)

	trail.Stop()
}

func TestTrailLogAfterStopIsDropped(t *testing.T) {
	storage := &fakeStorage{}
	trail := NewTrail(storage, 100, 50, time.Hour, zap.NewNop())
	trail.Start()
	trail.Stop()

	// Не должно паниковать записью в закрытый канал
	trail.Log(Event{ID: "late"})

	events, _ := storage.snapshot()
	assert.Empty(t, events)
}

func TestTrailStampsTimestamp(t *testing.T) {
	storage := &fakeStorage{}
	trail := NewTrail(storage, 100, 50, time.Hour, zap.NewNop())
	trail.Start()

	trail.Log(Event{ID: "evt-0"})
	trail.Stop()

	events, _ := storage.snapshot()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}
