package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
	"github.com/mihaimyh/checkoutmail/pkg/stripe"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		EnvStripeSecretKey:     "sk_test_123",
		EnvStripeWebhookSecret: "whsec_123",
		EnvSendGridAPIKey:      "SG.key",
		EnvFromEmail:           "billing@shop.test",
		EnvNotifyEmail:         "a@x.com, b@x.com",
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "whsec_123", cfg.Stripe.WebhookSecret)
	assert.Zero(t, cfg.Stripe.Tolerance)
	assert.False(t, cfg.Stripe.StrictAPIVersion)
	assert.Equal(t, stripe.DefaultFieldSource, cfg.Stripe.CustomFieldSource)
	assert.Equal(t, TransportSendGrid, cfg.Mail.Transport)
	assert.Equal(t, "SG.key", cfg.Mail.SendGridAPIKey)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.Notify.Recipients)
	assert.Equal(t, notifier.FailOnSendError, cfg.Notify.SendFailurePolicy)
	assert.Equal(t, zerolog.InfoLevel, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Zero(t, cfg.Notify.RateLimit)
}

func TestFromLookup_ReportsAllMissingKeys(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{EnvStripeSecretKey: "  "}))

	var missing *MissingConfigurationError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, []string{
		EnvStripeSecretKey,
		EnvStripeWebhookSecret,
		EnvFromEmail,
		EnvNotifyEmail,
		EnvSendGridAPIKey,
	}, missing.Keys)
	assert.Contains(t, err.Error(), "missing required configuration: STRIPE_SECRET_KEY")
}

func TestFromLookup_Overrides(t *testing.T) {
	env := baseEnv()
	env[EnvSendFailurePolicy] = "acknowledge"
	env[EnvCustomFieldSource] = "metadata:note"
	env[EnvStripeWebhookTolerance] = "10m"
	env[EnvStripeStrictAPIVersion] = "true"
	env[EnvLogLevel] = "DEBUG"
	env[EnvLogFormat] = "console"
	env[EnvHTTPAddr] = "127.0.0.1:9000"
	env[EnvWebhookRateLimit] = "60"

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)

	assert.Equal(t, notifier.AcknowledgeOnSendError, cfg.Notify.SendFailurePolicy)
	assert.Equal(t, stripe.FieldSource{Kind: stripe.FieldSourceMetadata, Key: "note"}, cfg.Stripe.CustomFieldSource)
	assert.Equal(t, 10*time.Minute, cfg.Stripe.Tolerance)
	assert.True(t, cfg.Stripe.StrictAPIVersion)
	assert.Equal(t, zerolog.DebugLevel, cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 60, cfg.Notify.RateLimit)
}

func TestFromLookup_InvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvMailTransport:          "pigeon",
		EnvSendFailurePolicy:      "retry",
		EnvCustomFieldSource:      "metadata",
		EnvStripeWebhookTolerance: "soon",
		EnvStripeStrictAPIVersion: "maybe",
		EnvLogLevel:               "loud",
		EnvLogFormat:              "xml",
		EnvWebhookRateLimit:       "-1",
		EnvNotifyEmail:            " , ",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			env[key] = value

			_, err := FromLookup(lookupFrom(env))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidValue)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestFromLookup_SMTPTransport(t *testing.T) {
	env := baseEnv()
	delete(env, EnvSendGridAPIKey)
	env[EnvMailTransport] = "smtp"
	env[EnvSMTPService] = "Gmail"
	env[EnvSMTPUser] = "shop@gmail.com"
	env[EnvSMTPPass] = "app-password"

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, SMTP{
		Service:  "gmail",
		Host:     "smtp.gmail.com",
		Port:     "587",
		Username: "shop@gmail.com",
		Password: "app-password",
	}, cfg.Mail.SMTP)

	delete(env, EnvSMTPService)
	_, err = FromLookup(lookupFrom(env))
	var missing *MissingConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{EnvSMTPHost}, missing.Keys)
}

func TestFromLookup_SESTransport(t *testing.T) {
	env := baseEnv()
	delete(env, EnvSendGridAPIKey)
	env[EnvMailTransport] = "SES"
	env[EnvSESRegion] = "eu-west-1"

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, TransportSES, cfg.Mail.Transport)
	assert.Equal(t, "eu-west-1", cfg.Mail.SESRegion)
}

func TestLoad_ReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SENDGRID_API_KEY=SG.from-file\n"), 0o600))

	for key, value := range baseEnv() {
		if key != EnvSendGridAPIKey {
			t.Setenv(key, value)
		}
	}
	t.Setenv(EnvSendGridAPIKey, "")
	os.Unsetenv(EnvSendGridAPIKey)
	t.Setenv(EnvDotenv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SG.from-file", cfg.Mail.SendGridAPIKey)
}
