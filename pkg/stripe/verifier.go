// Package stripe verifies Stripe webhook signatures and decodes checkout sessions.
package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

const defaultTolerance = webhook.DefaultTolerance

var (
	// ErrWebhookSecretMissing is returned by NewVerifier when no signing secret is configured
	ErrWebhookSecretMissing = errors.New("stripe webhook secret not configured")

	// ErrInvalidFieldSource is returned for an unparseable custom field source
	ErrInvalidFieldSource = errors.New("invalid custom field source")
)

// Config configures signature verification.
type Config struct {
	// WebhookSecret is the endpoint signing secret (whsec_...)
	WebhookSecret string

	// Tolerance bounds the age of the signed timestamp.
	// Default: 5 minutes
	Tolerance time.Duration

	// IgnoreAPIVersionMismatch accepts events rendered with another API version
	// than the one stripe-go was generated for. Only the session fields the
	// notification uses are decoded, and they are stable across versions.
	IgnoreAPIVersionMismatch bool

	// FieldSource selects the custom value of the session.
	// Default: first Checkout custom field
	FieldSource *FieldSource
}

// Verifier implements notifier.Verifier with stripe-go.
type Verifier struct {
	secret      string
	options     webhook.ConstructEventOptions
	fieldSource FieldSource
}

// NewVerifier creates a Verifier from config.
func NewVerifier(config Config) (*Verifier, error) {
	secret := strings.TrimSpace(config.WebhookSecret)
	if secret == "" {
		return nil, ErrWebhookSecretMissing
	}

	tolerance := config.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	fieldSource := DefaultFieldSource
	if config.FieldSource != nil {
		fieldSource = *config.FieldSource
	}

	return &Verifier{
		secret: secret,
		options: webhook.ConstructEventOptions{
			Tolerance:                tolerance,
			IgnoreAPIVersionMismatch: config.IgnoreAPIVersionMismatch,
		},
		fieldSource: fieldSource,
	}, nil
}

// Verify checks the signature over the raw payload and decodes the event.
// The payload must be the exact bytes received.
func (v *Verifier) Verify(payload []byte, signature string) (*notifier.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, v.options)
	if err != nil {
		return nil, err
	}

	out := &notifier.Event{
		ID:      event.ID,
		Type:    string(event.Type),
		Created: time.Unix(event.Created, 0).UTC(),
	}

	if out.Type != notifier.EventCheckoutSessionCompleted {
		return out, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("event %s carries no checkout session", event.ID)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	out.Session = v.checkoutSession(&session)

	return out, nil
}

func (v *Verifier) checkoutSession(session *stripe.CheckoutSession) *notifier.CheckoutSession {
	out := &notifier.CheckoutSession{
		ID:            session.ID,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		CustomerEmail: strings.TrimSpace(session.CustomerEmail),
		CustomField:   v.fieldSource.Extract(session),
	}

	if details := session.CustomerDetails; details != nil {
		if out.CustomerEmail == "" {
			out.CustomerEmail = strings.TrimSpace(details.Email)
		}
		out.CustomerName = strings.TrimSpace(details.Name)
	}
	if session.PaymentIntent != nil {
		out.PaymentIntentID = session.PaymentIntent.ID
	}

	return out
}
