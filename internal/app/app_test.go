package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/checkoutmail/pkg/config"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

type nopSender struct{}

func (nopSender) Name() string { return "nop" }

func (nopSender) Send(context.Context, *notifier.Email) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	env := map[string]string{
		config.EnvStripeSecretKey:     "sk_test_123",
		config.EnvStripeWebhookSecret: "whsec_123",
		config.EnvSendGridAPIKey:      "SG.key",
		config.EnvFromEmail:           "billing@shop.test",
		config.EnvNotifyEmail:         "a@x.com",
		config.EnvSendFailurePolicy:   "acknowledge",
	}
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func TestBuild(t *testing.T) {
	var out bytes.Buffer
	a, err := Build(context.Background(), testConfig(t), Options{
		Output:     &out,
		Registerer: prometheus.NewRegistry(),
		Sender:     nopSender{},
	})
	require.NoError(t, err)

	assert.Equal(t, notifier.AcknowledgeOnSendError, a.Handler.Policy())
	assert.Contains(t, out.String(), "webhook handler ready")
	assert.Contains(t, out.String(), `"transport":"nop"`)
}

func TestBuild_UsesConfiguredTransport(t *testing.T) {
	var out bytes.Buffer
	_, err := Build(context.Background(), testConfig(t), Options{Output: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"transport":"sendgrid"`)
}

func TestNewLogger_Level(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(config.Log{Level: zerolog.WarnLevel, Format: "json"}, &out)

	logger.Info().Msg("hidden")
	assert.Zero(t, out.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, out.String(), "shown")
}
