// Package config loads the process configuration from the environment.
//
// Every value is read once at startup; a missing required value fails the
// process before the first webhook is served.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
	"github.com/mihaimyh/checkoutmail/pkg/stripe"
)

// Mail transports.
const (
	TransportSendGrid = "sendgrid"
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
)

// Environment keys.
const (
	EnvStripeSecretKey        = "STRIPE_SECRET_KEY"
	EnvStripeWebhookSecret    = "STRIPE_WEBHOOK_SECRET"
	EnvStripeWebhookTolerance = "STRIPE_WEBHOOK_TOLERANCE"
	EnvStripeStrictAPIVersion = "STRIPE_STRICT_API_VERSION"
	EnvMailTransport          = "MAIL_TRANSPORT"
	EnvSendGridAPIKey         = "SENDGRID_API_KEY"
	EnvSMTPService            = "SMTP_SERVICE"
	EnvSMTPHost               = "SMTP_HOST"
	EnvSMTPPort               = "SMTP_PORT"
	EnvSMTPUser               = "SMTP_USER"
	EnvSMTPPass               = "SMTP_PASS"
	EnvSESRegion              = "SES_REGION"
	EnvFromEmail              = "FROM_EMAIL"
	EnvNotifyEmail            = "NOTIFY_EMAIL"
	EnvCustomFieldSource      = "CUSTOM_FIELD_SOURCE"
	EnvSendFailurePolicy      = "SEND_FAILURE_POLICY"
	EnvLogLevel               = "LOG_LEVEL"
	EnvLogFormat              = "LOG_FORMAT"
	EnvHTTPAddr               = "HTTP_ADDR"
	EnvWebhookRateLimit       = "WEBHOOK_RATE_LIMIT"
	EnvDotenv                 = "DOTENV"
)

const (
	defaultHTTPAddr  = ":8080"
	defaultLogFormat = "json"
	gmailHost        = "smtp.gmail.com"
	gmailPort        = "587"
)

// ErrInvalidValue is wrapped by every error about a present but unusable value.
var ErrInvalidValue = errors.New("invalid configuration value")

// MissingConfigurationError lists every required key that was not set.
type MissingConfigurationError struct {
	Keys []string
}

func (e *MissingConfigurationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Config is the validated process configuration.
type Config struct {
	Stripe Stripe
	Mail   Mail
	Notify Notify
	Log    Log
	HTTP   HTTP
}

// Stripe holds the payment provider settings.
type Stripe struct {
	SecretKey         string
	WebhookSecret     string
	Tolerance         time.Duration
	StrictAPIVersion  bool
	CustomFieldSource stripe.FieldSource
}

// Mail holds the transport selection and its credentials.
type Mail struct {
	Transport      string
	SendGridAPIKey string
	SMTP           SMTP
	SESRegion      string
}

// SMTP holds SMTP relay settings.
type SMTP struct {
	Service  string
	Host     string
	Port     string
	Username string
	Password string
}

// Notify holds the notification addressing, the send failure policy and
// the delivery rate limit.
type Notify struct {
	From              string
	Recipients        []string
	SendFailurePolicy notifier.SendFailurePolicy

	// RateLimit is the number of deliveries allowed per client IP per minute. 0 disables it.
	RateLimit int
}

// Log holds logger settings.
type Log struct {
	Level  zerolog.Level
	Format string
}

// HTTP holds settings of the standalone server.
type HTTP struct {
	Addr string
}

// LookupFunc returns the value of a key and whether it was set.
type LookupFunc func(key string) (string, bool)

// Load reads an optional dotenv file and then the process environment.
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}
	return FromLookup(os.LookupEnv)
}

func loadDotenv() error {
	if path, ok := os.LookupEnv(EnvDotenv); ok && path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

// FromLookup builds a Config from lookup. All missing required keys are
// reported together in a *MissingConfigurationError.
//
//nolint:gocyclo // flat list of keys
func FromLookup(lookup LookupFunc) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Stripe: Stripe{
			SecretKey:     r.required(EnvStripeSecretKey),
			WebhookSecret: r.required(EnvStripeWebhookSecret),
		},
		Mail: Mail{
			Transport: strings.ToLower(r.optional(EnvMailTransport, TransportSendGrid)),
		},
		Notify: Notify{
			From: r.required(EnvFromEmail),
		},
		Log: Log{
			Format: strings.ToLower(r.optional(EnvLogFormat, defaultLogFormat)),
		},
		HTTP: HTTP{
			Addr: r.optional(EnvHTTPAddr, defaultHTTPAddr),
		},
	}

	if raw := r.required(EnvNotifyEmail); raw != "" {
		cfg.Notify.Recipients = notifier.ParseRecipients(raw)
		if len(cfg.Notify.Recipients) == 0 {
			r.invalidValue(EnvNotifyEmail, "no addresses")
		}
	}

	switch cfg.Mail.Transport {
	case TransportSendGrid:
		cfg.Mail.SendGridAPIKey = r.required(EnvSendGridAPIKey)
	case TransportSMTP:
		cfg.Mail.SMTP = r.smtp()
	case TransportSES:
		cfg.Mail.SESRegion = r.optional(EnvSESRegion, "")
	default:
		r.invalidValue(EnvMailTransport, fmt.Sprintf("unknown transport %q", cfg.Mail.Transport))
	}

	policy, err := notifier.ParseSendFailurePolicy(r.optional(EnvSendFailurePolicy, ""))
	if err != nil {
		r.invalidValue(EnvSendFailurePolicy, err.Error())
	}
	cfg.Notify.SendFailurePolicy = policy

	source, err := stripe.ParseFieldSource(r.optional(EnvCustomFieldSource, ""))
	if err != nil {
		r.invalidValue(EnvCustomFieldSource, err.Error())
	}
	cfg.Stripe.CustomFieldSource = source

	if raw := r.optional(EnvStripeWebhookTolerance, ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			r.invalidValue(EnvStripeWebhookTolerance, "want a positive duration such as 5m")
		}
		cfg.Stripe.Tolerance = d
	}

	if raw := r.optional(EnvStripeStrictAPIVersion, ""); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			r.invalidValue(EnvStripeStrictAPIVersion, err.Error())
		}
		cfg.Stripe.StrictAPIVersion = strict
	}

	level, err := zerolog.ParseLevel(strings.ToLower(r.optional(EnvLogLevel, "info")))
	if err != nil {
		r.invalidValue(EnvLogLevel, err.Error())
	}
	cfg.Log.Level = level

	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		r.invalidValue(EnvLogFormat, "want json or console")
	}

	if raw := r.optional(EnvWebhookRateLimit, ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			r.invalidValue(EnvWebhookRateLimit, "want a non-negative integer")
		}
		cfg.Notify.RateLimit = n
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type reader struct {
	lookup   LookupFunc
	missing  []string
	problems []error
}

func (r *reader) value(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func (r *reader) required(key string) string {
	v := r.value(key)
	if v == "" {
		r.missing = append(r.missing, key)
	}
	return v
}

func (r *reader) optional(key, fallback string) string {
	if v := r.value(key); v != "" {
		return v
	}
	return fallback
}

func (r *reader) invalidValue(key, reason string) {
	r.problems = append(r.problems, fmt.Errorf("%w: %s: %s", ErrInvalidValue, key, reason))
}

func (r *reader) smtp() SMTP {
	s := SMTP{Service: strings.ToLower(r.optional(EnvSMTPService, ""))}
	switch s.Service {
	case "":
		s.Host = r.required(EnvSMTPHost)
		s.Port = r.optional(EnvSMTPPort, gmailPort)
	case "gmail":
		s.Host = r.optional(EnvSMTPHost, gmailHost)
		s.Port = r.optional(EnvSMTPPort, gmailPort)
	default:
		r.invalidValue(EnvSMTPService, fmt.Sprintf("unknown service %q", s.Service))
	}
	s.Username = r.required(EnvSMTPUser)
	s.Password = r.required(EnvSMTPPass)
	return s
}

func (r *reader) err() error {
	var errs []error
	if len(r.missing) > 0 {
		errs = append(errs, &MissingConfigurationError{Keys: r.missing})
	}
	errs = append(errs, r.problems...)
	return errors.Join(errs...)
}
