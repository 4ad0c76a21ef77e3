package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientSubmit(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/admin/register/company", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(body))

		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret-key", 5*time.Second)

	resp, err := client.Submit(ctx, OpRegisterCompany, []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success"}`, string(resp))
}

func TestHTTPClientThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", 5*time.Second)

	_, err := client.Submit(context.Background(), OpRegisterCompany, nil)
	var throttle *ThrottleError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 7*time.Second, throttle.RetryAfter)
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", 5*time.Second)

	_, err := client.Submit(context.Background(), OpRegisterCorporate, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	var throttle *ThrottleError
	assert.False(t, errors.As(err, &throttle))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseRetryAfter(""))
	assert.Equal(t, 2*time.Second, parseRetryAfter("not-a-number"))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
}

func TestMockGatewayOps(t *testing.T) {
	ctx := context.Background()
	mock := &MockGateway{}

	resp, err := mock.Submit(ctx, OpRegisterCompany, nil)
	require.NoError(t, err)
	assert.Contains(t, string(resp), "success")

	_, err = mock.Submit(ctx, "unknown/op", nil)
	assert.Error(t, err)
}
