package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Response bodies returned to the webhook sender.
const (
	BodyMethodNotAllowed = "Method Not Allowed"
	BodyWebhookError     = "Webhook Error: "
	BodyEmailError       = "Error sending email"
	BodyReceived         = "Webhook received"
	BodyTooLarge         = "Payload Too Large"
	BodyRateLimited      = "Too Many Requests"
)

// Config holds the dependencies and settings of a Handler.
type Config struct {
	// Verifier checks signatures and decodes events (required)
	Verifier Verifier

	// Sender delivers the notification email (required)
	Sender Sender

	// From is the sender address (required)
	From string

	// Recipients receive every notification (required, at least one)
	Recipients []string

	// SendFailurePolicy maps send failures onto the response.
	// Default: FailOnSendError
	SendFailurePolicy SendFailurePolicy

	// RateLimit caps deliveries per client IP. Zero value disables it.
	RateLimit RateLimit

	// Logger is optional. If nil, logs are discarded.
	Logger Logger

	// Metrics is optional. If nil, metrics are silently ignored.
	Metrics Metrics
}

// Handler verifies webhook deliveries and sends a notification for completed
// checkouts. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	verifier   Verifier
	sender     Sender
	from       string
	recipients []string
	policy     SendFailurePolicy
	limiter    *deliveryLimiter
	logger     Logger
	metrics    Metrics
}

// New creates a Handler from config.
func New(config Config) (*Handler, error) {
	if config.Verifier == nil || config.Sender == nil {
		return nil, ErrNotConfigured
	}
	from := strings.TrimSpace(config.From)
	if from == "" {
		return nil, fmt.Errorf("%w: sender address is empty", ErrNotConfigured)
	}

	recipients := make([]string, 0, len(config.Recipients))
	for _, r := range config.Recipients {
		if addr := strings.TrimSpace(r); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrNotConfigured)
	}

	switch config.SendFailurePolicy {
	case FailOnSendError, AcknowledgeOnSendError:
	default:
		return nil, ErrInvalidPolicy
	}

	logger := config.Logger
	if logger == nil {
		logger = NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}

	return &Handler{
		verifier:   config.Verifier,
		sender:     config.Sender,
		from:       from,
		recipients: recipients,
		policy:     config.SendFailurePolicy,
		limiter:    newDeliveryLimiter(config.RateLimit),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Policy returns the send failure policy the handler applies.
func (h *Handler) Policy() SendFailurePolicy {
	return h.policy
}

// Handle processes one webhook delivery.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	startTime := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	fields := deliveryFields(req, requestID)

	if req.Method != http.MethodPost {
		h.logger.Debug("webhook rejected", append(fields,
			Field{Key: "method", Value: req.Method},
			errField(ErrMethodNotAllowed))...)
		h.metrics.RecordWebhookError("method_not_allowed")
		return Response{StatusCode: http.StatusMethodNotAllowed, Body: BodyMethodNotAllowed}
	}

	if h.limiter != nil && !h.limiter.admit(req.ClientIP) {
		h.logger.Warn("webhook rejected", append(fields, errField(ErrRateLimited))...)
		h.metrics.RecordWebhookError("rate_limited")
		return Response{StatusCode: http.StatusTooManyRequests, Body: BodyRateLimited}
	}

	if req.BodyErr != nil {
		h.logger.Warn("webhook body rejected", append(fields, errField(req.BodyErr))...)
		if errors.Is(req.BodyErr, ErrPayloadTooLarge) {
			h.metrics.RecordWebhookError("payload_too_large")
			return Response{StatusCode: http.StatusRequestEntityTooLarge, Body: BodyTooLarge}
		}
		h.metrics.RecordWebhookError("invalid_payload")
		return Response{StatusCode: http.StatusBadRequest, Body: BodyWebhookError + req.BodyErr.Error()}
	}

	event, err := h.verify(req)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", append(fields, errField(err))...)
		h.metrics.RecordWebhookError("auth_failed")
		return Response{StatusCode: http.StatusBadRequest, Body: BodyWebhookError + verificationMessage(err)}
	}

	eventType := event.Type
	if eventType == "" {
		eventType = "UNKNOWN"
	}
	eventFields := append(fields,
		Field{Key: "event_id", Value: event.ID},
		Field{Key: "event_type", Value: eventType})

	if event.Type != EventCheckoutSessionCompleted || event.Session == nil {
		h.logger.Debug("webhook event ignored", eventFields...)
		h.metrics.RecordWebhookEvent(eventType, "ignored")
		h.metrics.RecordWebhookProcessingDuration(eventType, time.Since(startTime))
		return Response{StatusCode: http.StatusOK, Body: BodyReceived}
	}

	if err := h.notify(ctx, event.Session); err != nil {
		h.logger.Error("error sending email", append(eventFields,
			Field{Key: "transport", Value: h.sender.Name()},
			Field{Key: "policy", Value: h.policy.String()},
			errField(err))...)
		h.metrics.RecordWebhookError("send_failed")
		h.metrics.RecordWebhookProcessingDuration(eventType, time.Since(startTime))

		if h.policy == FailOnSendError {
			h.metrics.RecordWebhookEvent(eventType, "error")
			return Response{StatusCode: http.StatusInternalServerError, Body: BodyEmailError}
		}
		h.metrics.RecordWebhookEvent(eventType, "acknowledged")
		return Response{StatusCode: http.StatusOK, Body: BodyReceived}
	}

	h.logger.Info("email sent", append(eventFields,
		Field{Key: "transport", Value: h.sender.Name()},
		Field{Key: "recipients", Value: strings.Join(h.recipients, ", ")})...)
	h.metrics.RecordWebhookEvent(eventType, "success")
	h.metrics.RecordWebhookProcessingDuration(eventType, time.Since(startTime))

	return Response{StatusCode: http.StatusOK, Body: BodyReceived}
}

func (h *Handler) verify(req Request) (*Event, error) {
	sig := req.Header(SignatureHeader)
	if sig == "" {
		return nil, fmt.Errorf("%w: %w", ErrSignatureVerification, ErrMissingSignature)
	}

	event, err := h.verifier.Verify(req.Body, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignatureVerification, err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: no event decoded", ErrSignatureVerification)
	}
	return event, nil
}

func (h *Handler) notify(ctx context.Context, session *CheckoutSession) error {
	email := ComposeEmail(session, h.from, h.recipients)
	transport := h.sender.Name()

	start := time.Now()
	err := h.sender.Send(ctx, email)
	h.metrics.RecordEmailSendDuration(transport, time.Since(start))
	if err != nil {
		h.metrics.RecordEmailSend(transport, "error")
		return fmt.Errorf("%w: %w", ErrEmailSend, err)
	}
	h.metrics.RecordEmailSend(transport, "success")
	return nil
}

// verificationMessage strips the ErrSignatureVerification prefix so the caller
// only sees the oracle's own message.
func verificationMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, ErrSignatureVerification) {
		msg = strings.TrimPrefix(msg, ErrSignatureVerification.Error()+": ")
	}
	return msg
}
