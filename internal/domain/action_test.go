package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	t.Run("pending to approved", func(t *testing.T) {
		a := &Action{Status: StatusPending}
		assert.NoError(t, a.CanTransitionTo(StatusApproved))
	})

	t.Run("pending to rejected", func(t *testing.T) {
		a := &Action{Status: StatusPending}
		assert.NoError(t, a.CanTransitionTo(StatusRejected))
	})

	t.Run("pending to pending is not a decision", func(t *testing.T) {
		a := &Action{Status: StatusPending}
		assert.ErrorIs(t, a.CanTransitionTo(StatusPending), ErrInvalidTransition)
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		for _, status := range []ActionStatus{StatusApproved, StatusRejected} {
			a := &Action{Status: status}
			assert.ErrorIs(t, a.CanTransitionTo(StatusApproved), ErrAlreadyDecided)
			assert.ErrorIs(t, a.CanTransitionTo(StatusRejected), ErrAlreadyDecided)
		}
	})
}

func TestActionClone(t *testing.T) {
	approver := "admin-2"
	at := time.Now().UTC()
	original := &Action{
		ID:         "action-1",
		Type:       ActionCompanyOnboarding,
		Status:     StatusApproved,
		ApprovedBy: &approver,
		ApprovedAt: &at,
		Payload:    json.RawMessage(`{"company":{"name":"Acme"}}`),
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Мутация копии не должна протекать в оригинал
	*clone.ApprovedBy = "intruder"
	clone.Payload[2] = 'X'

	assert.Equal(t, "admin-2", *original.ApprovedBy)
	assert.Equal(t, json.RawMessage(`{"company":{"name":"Acme"}}`), original.Payload)
}
