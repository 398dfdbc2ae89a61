package notifier

import (
	"context"
	"strings"
	"time"
)

// EventCheckoutSessionCompleted is the only event kind that triggers an email.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// SignatureHeader carries the provider signature token.
const SignatureHeader = "stripe-signature"

// Request is a single inbound webhook delivery as handed over by the hosting platform.
type Request struct {
	Method    string
	Headers   map[string]string
	Body      []byte
	RequestID string

	// ClientIP keys the delivery rate limit. Empty means unknown.
	ClientIP string

	// BodyErr is set by the adapter when the body could not be read or decoded.
	// It wraps ErrPayloadTooLarge or ErrInvalidPayload.
	BodyErr error
}

// Header returns the value of the named header, matching the key case-insensitively.
func (r Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response is what the platform returns to the webhook sender.
type Response struct {
	StatusCode int
	Body       string
}

// Event is a webhook payload whose signature has been verified.
type Event struct {
	ID      string
	Type    string
	Created time.Time

	// Session is populated only for checkout.session.completed events.
	Session *CheckoutSession
}

// CheckoutSession is the subset of a completed checkout the email reports on.
// Empty strings mean the provider did not send the value.
type CheckoutSession struct {
	ID              string
	AmountTotal     int64 // minor currency units
	Currency        string
	CustomerEmail   string
	CustomerName    string
	PaymentIntentID string
	CustomField     string
}

// Email is a notification composed for one request. It is never stored.
type Email struct {
	To      []string
	From    string
	Subject string
	Body    string
}

// Processor handles one webhook delivery. *Handler implements it; platform
// adapters depend on this interface.
type Processor interface {
	Handle(ctx context.Context, req Request) Response
}

// Verifier checks the signature of a raw payload and decodes the event.
type Verifier interface {
	Verify(payload []byte, signature string) (*Event, error)
}

// Sender delivers a notification email.
type Sender interface {
	// Name identifies the transport in logs and metrics (e.g. "sendgrid", "smtp").
	Name() string

	// Send blocks until the transport accepted or rejected the message.
	Send(ctx context.Context, email *Email) error
}

// SendFailurePolicy decides how a failed email send maps onto the webhook response.
type SendFailurePolicy int

const (
	// FailOnSendError answers 500 so the webhook sender retries the delivery.
	FailOnSendError SendFailurePolicy = iota

	// AcknowledgeOnSendError answers 200; the email for that delivery is dropped.
	AcknowledgeOnSendError
)

func (p SendFailurePolicy) String() string {
	switch p {
	case FailOnSendError:
		return "fail"
	case AcknowledgeOnSendError:
		return "acknowledge"
	default:
		return "unknown"
	}
}

// ParseSendFailurePolicy parses "fail" or "acknowledge".
func ParseSendFailurePolicy(s string) (SendFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return FailOnSendError, nil
	case "acknowledge", "ack":
		return AcknowledgeOnSendError, nil
	default:
		return FailOnSendError, ErrInvalidPolicy
	}
}
