package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/gateway"
)

// mapCompanyDirectory — CompanyDirectory поверх мапы.
type mapCompanyDirectory struct {
	companies map[string]*domain.Company
}

func (d *mapCompanyDirectory) ListCompanies(_ context.Context, _ string, _, _ int) ([]*domain.Company, error) {
	out := make([]*domain.Company, 0, len(d.companies))
	for _, c := range d.companies {
		out = append(out, c)
	}
	return out, nil
}

func (d *mapCompanyDirectory) FindCompany(_ context.Context, id string) (*domain.Company, error) {
	return d.companies[id], nil
}

// stubGateway отвечает заготовленной парой (resp, err) и запоминает вызов.
type stubGateway struct {
	resp    []byte
	err     error
	gotOp   string
	gotBody []byte
}

func (g *stubGateway) Submit(_ context.Context, op string, payload []byte) ([]byte, error) {
	g.gotOp = op
	g.gotBody = payload
	return g.resp, g.err
}

func newTestCompanyService(t *testing.T, bank gateway.Client) (*CompanyService, *auditRecorder) {
	t.Helper()
	logger := zap.NewNop()

	store := approval.NewMemoryActionStore()
	companies := approval.NewMemoryCompanyStore()
	users := approval.NewMemoryUserStore()
	applier := approval.NewApplier(companies, users, nil, logger)
	engine := approval.NewEngine(store, applier, nil, nil, true, logger)
	approvals := approval.NewService(store, approval.NewFactory(store, companies, users), engine, nil, nil, logger)

	dir := &mapCompanyDirectory{companies: map[string]*domain.Company{
		"comp-1": {ID: "comp-1", Name: "Acme Ltd", Email: "ops@acme.test", CreatedAt: time.Now()},
	}}

	recorder := &auditRecorder{}
	svc := NewCompanyService(dir, approvals, bank, recorder, logger)
	return svc, recorder
}

func TestCompanyServiceProposeOnboarding(t *testing.T) {
	ctx := context.Background()
	svc, recorder := newTestCompanyService(t, &stubGateway{})

	payload := domain.CompanyOnboardingPayload{
		Company: domain.CompanyDraft{ID: "comp-2", Name: "Globex", Email: "it@globex.test"},
	}
	a, err := svc.ProposeOnboarding(ctx, payload, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, "admin-1", a.InitiatedBy)

	events := recorder.byAction(audit.ActionPropose)
	require.Len(t, events, 1)
	assert.Equal(t, "admin-1", events[0].ActorID)
	assert.Equal(t, a.ID, events[0].EntityID)
	assert.Equal(t, string(domain.ActionCompanyOnboarding), events[0].Detail["type"])
}

func TestCompanyServiceRegisterWithBank(t *testing.T) {
	ctx := context.Background()
	bank := &stubGateway{resp: []byte(`{"registered":true}`)}
	svc, recorder := newTestCompanyService(t, bank)

	resp, err := svc.RegisterWithBank(ctx, "comp-1", "admin-2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"registered":true}`, string(resp))
	assert.Equal(t, gateway.OpRegisterCompany, bank.gotOp)
	assert.Contains(t, string(bank.gotBody), "Acme Ltd")

	events := recorder.byAction(audit.ActionGatewayProxy)
	require.Len(t, events, 1)
	assert.Equal(t, audit.StatusSuccess, events[0].Status)
	assert.Equal(t, "comp-1", events[0].EntityID)
	assert.Equal(t, gateway.OpRegisterCompany, events[0].Detail["op"])
}

func TestCompanyServiceRegisterWithBankThrottled(t *testing.T) {
	ctx := context.Background()
	throttle := &gateway.ThrottleError{RetryAfter: 3 * time.Second, Cause: errors.New("rate limited")}
	svc, recorder := newTestCompanyService(t, &stubGateway{err: throttle})

	_, err := svc.RegisterWithBank(ctx, "comp-1", "admin-2")
	require.Error(t, err)
	var te *gateway.ThrottleError
	require.ErrorAs(t, err, &te)

	// Провал шлюза тоже попадает в журнал, со статусом failed и причиной
	events := recorder.byAction(audit.ActionGatewayProxy)
	require.Len(t, events, 1)
	assert.Equal(t, audit.StatusFailed, events[0].Status)
	assert.Contains(t, events[0].Error, "throttled")
}
