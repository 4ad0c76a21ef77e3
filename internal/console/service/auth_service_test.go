package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/domain"
	"github.com/xela07ax/corpadmin-portal/internal/otp"
)

// auditRecorder собирает события журнала вместо асинхронной записи.
type auditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *auditRecorder) Log(e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *auditRecorder) byAction(action string) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// mapAdminRepo — AdminProvider поверх мапы, без Postgres.
type mapAdminRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Admin
}

func newMapAdminRepo(admins ...*domain.Admin) *mapAdminRepo {
	r := &mapAdminRepo{byEmail: make(map[string]*domain.Admin)}
	for _, a := range admins {
		r.byEmail[a.Email] = a
	}
	return r
}

func (r *mapAdminRepo) GetAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *mapAdminRepo) GetAdminByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *mapAdminRepo) InsertAdmin(_ context.Context, a *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[a.Email]; ok {
		return domain.ErrAdminExists
	}
	r.byEmail[a.Email] = a
	return nil
}

// captureDelivery запоминает последний выданный код вместо отправки.
type captureDelivery struct {
	mu    sync.Mutex
	email string
	code  string
}

func (d *captureDelivery) Deliver(_ context.Context, email, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.email = email
	d.code = code
	return nil
}

func (d *captureDelivery) last() (string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.email, d.code
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(t *testing.T, admins ...*domain.Admin) (*AuthService, *captureDelivery, *auditRecorder) {
	t.Helper()
	logger := zap.NewNop()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	delivery := &captureDelivery{}
	issuer := otp.NewIssuer(otp.NewMemoryStore(), delivery, 5*time.Minute, logger)
	recorder := &auditRecorder{}

	svc := NewAuthService(newMapAdminRepo(admins...), issuer, key, &key.PublicKey,
		time.Hour, bcrypt.MinCost, recorder, logger)
	return svc, delivery, recorder
}

func TestAuthServiceSignIn(t *testing.T) {
	ctx := context.Background()
	admin := &domain.Admin{
		ID:           "admin-1",
		Email:        "maker@corp.test",
		Role:         domain.RoleMaker,
		PasswordHash: hashPassword(t, "s3cret-pass"),
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "maker@corp.test", password: "s3cret-pass"},
		{name: "unknown email", email: "ghost@corp.test", password: "s3cret-pass", wantErr: ErrInvalidCredentials},
		{name: "wrong password", email: "maker@corp.test", password: "nope", wantErr: ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, delivery, recorder := newTestAuthService(t, admin)

			err := svc.SignIn(ctx, tc.email, tc.password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				_, code := delivery.last()
				assert.Empty(t, code, "otp must not be issued on denied sign-in")

				events := recorder.byAction(audit.ActionSignIn)
				require.Len(t, events, 1)
				assert.Equal(t, audit.StatusDenied, events[0].Status)
				return
			}

			require.NoError(t, err)
			email, code := delivery.last()
			assert.Equal(t, "maker@corp.test", email)
			assert.Len(t, code, 6)

			events := recorder.byAction(audit.ActionSignIn)
			require.Len(t, events, 1)
			assert.Equal(t, audit.StatusSuccess, events[0].Status)
			assert.Equal(t, "admin-1", events[0].ActorID)
		})
	}
}

func TestAuthServiceVerifyOTP(t *testing.T) {
	ctx := context.Background()
	admin := &domain.Admin{
		ID:           "admin-1",
		Email:        "checker@corp.test",
		Role:         domain.RoleAuthorizer,
		PasswordHash: hashPassword(t, "s3cret-pass"),
	}
	svc, delivery, _ := newTestAuthService(t, admin)

	require.NoError(t, svc.SignIn(ctx, "checker@corp.test", "s3cret-pass"))
	_, code := delivery.last()
	require.NotEmpty(t, code)

	// Неверный код не сжигает выданный
	_, err := svc.VerifyOTP(ctx, "checker@corp.test", "000000")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.VerifyOTP(ctx, "checker@corp.test", code)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Positive(t, resp.ExpiresIn)

	// Токен подписан нашим ключом и несет роль администратора
	claims, err := svc.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, domain.RoleAuthorizer, claims.Role)

	// Код одноразовый: повторная проверка отклоняется
	_, err = svc.VerifyOTP(ctx, "checker@corp.test", code)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestAuthService(t)

	admin, err := svc.Register(ctx, domain.SignupRequest{
		Name:     "Ivan Petrov",
		Email:    "ivan@corp.test",
		Password: "initial-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
	assert.Equal(t, domain.RoleMaker, admin.Role, "role defaults to maker")
	assert.Equal(t, "active", admin.Status)

	// В карточке лежит bcrypt-хеш, а не исходный пароль
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("initial-pass")))

	events := recorder.byAction(audit.ActionSignup)
	require.Len(t, events, 1)
	assert.Equal(t, audit.StatusSuccess, events[0].Status)
	assert.Equal(t, admin.ID, events[0].ActorID)

	// Повторная регистрация на тот же email отклоняется
	_, err = svc.Register(ctx, domain.SignupRequest{
		Name:     "Ivan Petrov",
		Email:    "ivan@corp.test",
		Password: "another-pass",
	})
	require.ErrorIs(t, err, domain.ErrAdminExists)

	// После регистрации админ может войти
	require.NoError(t, svc.SignIn(ctx, "ivan@corp.test", "initial-pass"))
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, domain.SignupRequest{Name: "No Password", Email: "np@corp.test"})
	require.ErrorIs(t, err, ErrSignupInvalid)

	_, err = svc.Register(ctx, domain.SignupRequest{
		Name:     "Bad Role",
		Email:    "br@corp.test",
		Password: "pass",
		Role:     domain.AdminRole("superuser"),
	})
	require.ErrorIs(t, err, ErrSignupInvalid)
}
