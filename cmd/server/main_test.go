package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/checkoutmail/internal/app"
	"github.com/mihaimyh/checkoutmail/pkg/config"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

type nopSender struct{}

func (nopSender) Name() string { return "nop" }

func (nopSender) Send(context.Context, *notifier.Email) error { return nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	env := map[string]string{
		config.EnvStripeSecretKey:     "sk_test_123",
		config.EnvStripeWebhookSecret: "whsec_123",
		config.EnvSendGridAPIKey:      "SG.key",
		config.EnvFromEmail:           "billing@shop.test",
		config.EnvNotifyEmail:         "a@x.com",
	}
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	a, err := app.Build(context.Background(), cfg, app.Options{
		Output:     &bytes.Buffer{},
		Registerer: reg,
		Sender:     nopSender{},
	})
	require.NoError(t, err)
	return newRouter(a, reg)
}

func TestRouter(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhooks/stripe", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method Not Allowed", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "checkoutmail_webhook_errors_total")
}
