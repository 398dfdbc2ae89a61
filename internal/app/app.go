// Package app wires configuration, logging, verification and mail delivery
// into a ready webhook handler. Executables call it once at process start.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mihaimyh/checkoutmail/pkg/config"
	"github.com/mihaimyh/checkoutmail/pkg/mailer"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
	zerologadapter "github.com/mihaimyh/checkoutmail/pkg/notifier/logger/zerolog"
	prommetrics "github.com/mihaimyh/checkoutmail/pkg/notifier/metrics/prometheus"
	"github.com/mihaimyh/checkoutmail/pkg/stripe"
)

const metricsNamespace = "checkoutmail"

// Options tune Build for a particular executable.
type Options struct {
	// Output receives log lines. Default: os.Stdout
	Output io.Writer

	// Registerer enables Prometheus metrics when set.
	Registerer prometheus.Registerer

	// Sender replaces the configured transport (tests).
	Sender notifier.Sender
}

// App is the wired process.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Handler *notifier.Handler
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg config.Log, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
}

// Build constructs every long-lived client once.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	zlog := NewLogger(cfg.Log, opts.Output)

	fieldSource := cfg.Stripe.CustomFieldSource
	verifier, err := stripe.NewVerifier(stripe.Config{
		WebhookSecret:            cfg.Stripe.WebhookSecret,
		Tolerance:                cfg.Stripe.Tolerance,
		IgnoreAPIVersionMismatch: !cfg.Stripe.StrictAPIVersion,
		FieldSource:              &fieldSource,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe verifier: %w", err)
	}

	sender := opts.Sender
	if sender == nil {
		sender, err = mailer.New(ctx, cfg.Mail)
		if err != nil {
			return nil, err
		}
	}

	var metrics notifier.Metrics
	if opts.Registerer != nil {
		metrics = prommetrics.NewMetrics(opts.Registerer, metricsNamespace)
	}

	handler, err := notifier.New(notifier.Config{
		Verifier:          verifier,
		Sender:            sender,
		From:              cfg.Notify.From,
		Recipients:        cfg.Notify.Recipients,
		SendFailurePolicy: cfg.Notify.SendFailurePolicy,
		RateLimit:         notifier.RateLimit{Requests: cfg.Notify.RateLimit, Window: time.Minute},
		Logger:            zerologadapter.NewLogger(&zlog),
		Metrics:           metrics,
	})
	if err != nil {
		return nil, err
	}

	zlog.Info().
		Str("transport", sender.Name()).
		Str("send_failure_policy", handler.Policy().String()).
		Str("custom_field_source", fieldSource.String()).
		Int("recipients", len(cfg.Notify.Recipients)).
		Int("rate_limit_per_minute", cfg.Notify.RateLimit).
		Msg("webhook handler ready")

	return &App{Config: cfg, Logger: zlog, Handler: handler}, nil
}
