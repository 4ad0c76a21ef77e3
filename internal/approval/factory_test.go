package approval

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

func newTestFactory(t *testing.T) (*Factory, *MemoryCompanyStore, *MemoryUserStore) {
	t.Helper()
	companies := NewMemoryCompanyStore()
	users := NewMemoryUserStore()
	return NewFactory(NewMemoryActionStore(), companies, users), companies, users
}

func TestProposeOnboarding(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFactory(t)

	payload := json.RawMessage(`{"company":{"name":"Acme Ltd","email":"ops@acme.test"},"users":[{"name":"John","email":"john@acme.test","role":"initiator"}]}`)

	a, err := f.Propose(ctx, domain.ActionCompanyOnboarding, payload, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, "admin-1", a.InitiatedBy)
	assert.Equal(t, "New company onboarding: Acme Ltd", a.Description)
	assert.Nil(t, a.ApprovedBy)
	assert.JSONEq(t, string(payload), string(a.Payload))

	// Round-trip через хранилище: заявка читается такой же
	got, err := f.store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestProposeValidation(t *testing.T) {
	ctx := context.Background()
	f, companies, users := newTestFactory(t)

	require.NoError(t, companies.InsertCompany(ctx, &domain.Company{ID: "comp-1", Name: "Acme Ltd"}))
	require.NoError(t, users.InsertUser(ctx, &domain.CorporateUser{ID: "user-1", Status: domain.UserInactive}))

	cases := []struct {
		name    string
		typ     domain.ActionType
		payload string
		wantErr error
	}{
		{"missing company name", domain.ActionCompanyOnboarding, `{"company":{"email":"a@b.test"}}`, ErrValidation},
		{"broken json", domain.ActionCompanyOnboarding, `{`, ErrValidation},
		{"unsupported mandate op", domain.ActionMandateUpdate, `{"companyId":"comp-1","action":"remove_user","user":{"name":"J","email":"j@a.test"}}`, ErrValidation},
		{"mandate for unknown company", domain.ActionMandateUpdate, `{"companyId":"ghost","action":"add_user","user":{"name":"J","email":"j@a.test"}}`, ErrCompanyNotFound},
		{"unlock without user id", domain.ActionAccountUnlock, `{}`, ErrValidation},
		{"unlock for unknown user", domain.ActionAccountUnlock, `{"userId":"ghost"}`, ErrUserNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Propose(ctx, tc.typ, json.RawMessage(tc.payload), "admin-1")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestProposeMandateDescription(t *testing.T) {
	ctx := context.Background()
	f, companies, _ := newTestFactory(t)
	require.NoError(t, companies.InsertCompany(ctx, &domain.Company{ID: "comp-1", Name: "Acme Ltd"}))

	payload := json.RawMessage(`{"companyId":"comp-1","action":"add_user","user":{"name":"Jane","email":"jane@acme.test","role":"approver"}}`)
	a, err := f.Propose(ctx, domain.ActionMandateUpdate, payload, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Mandate update: Add new user to Acme Ltd", a.Description)
}

func TestProposeRequiresInitiator(t *testing.T) {
	f, _, _ := newTestFactory(t)
	_, err := f.Propose(context.Background(), domain.ActionAccountUnlock, json.RawMessage(`{"userId":"user-1"}`), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProposeUnknownTypeIsAccepted(t *testing.T) {
	f, _, _ := newTestFactory(t)

	a, err := f.Propose(context.Background(), domain.ActionType("limit_change"), json.RawMessage(`{"limit":"100000"}`), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Pending action of type limit_change", a.Description)
	assert.WithinDuration(t, time.Now().UTC(), a.CreatedAt, 5*time.Second)
}
