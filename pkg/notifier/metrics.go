package notifier

import "time"

// Metrics defines the interface for tracking webhook and email operations.
// Handlers fall back to NoopMetrics when none is configured.
type Metrics interface {
	// RecordWebhookEvent records a verified webhook event.
	// status: "success", "ignored" or "error"
	RecordWebhookEvent(eventType, status string)

	// RecordWebhookError records a rejected or failed delivery.
	// errorType: "method_not_allowed", "rate_limited", "payload_too_large",
	// "invalid_payload", "auth_failed" or "send_failed"
	RecordWebhookError(errorType string)

	// RecordWebhookProcessingDuration records how long a delivery took end to end.
	RecordWebhookProcessingDuration(eventType string, duration time.Duration)

	// RecordEmailSend records one send attempt per transport.
	// status: "success" or "error"
	RecordEmailSend(transport, status string)

	// RecordEmailSendDuration records how long the transport took to answer.
	RecordEmailSendDuration(transport string, duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordWebhookEvent(_, _ string)                            {}
func (n *NoopMetrics) RecordWebhookError(_ string)                               {}
func (n *NoopMetrics) RecordWebhookProcessingDuration(_ string, _ time.Duration) {}
func (n *NoopMetrics) RecordEmailSend(_, _ string)                               {}
func (n *NoopMetrics) RecordEmailSendDuration(_ string, _ time.Duration)         {}
