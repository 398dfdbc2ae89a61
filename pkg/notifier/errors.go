package notifier

import "errors"

var (
	// ErrNotConfigured is returned by New when a required dependency or value is missing
	ErrNotConfigured = errors.New("webhook handler not configured")

	// ErrMethodNotAllowed is returned for any HTTP method other than POST
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMissingSignature is returned when the signature header is absent
	ErrMissingSignature = errors.New("missing stripe-signature header")

	// ErrSignatureVerification wraps every failure of the verification oracle
	ErrSignatureVerification = errors.New("webhook signature verification failed")

	// ErrEmailSend wraps every failure of the email transport
	ErrEmailSend = errors.New("error sending email")

	// ErrPayloadTooLarge is reported by adapters when the body exceeds their size limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInvalidPayload is reported by adapters when the body cannot be read or decoded
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrRateLimited is returned when a client exceeds the delivery rate limit
	ErrRateLimited = errors.New("delivery rate limit exceeded")

	// ErrInvalidPolicy is returned for an unknown send failure policy
	ErrInvalidPolicy = errors.New("invalid send failure policy")
)
