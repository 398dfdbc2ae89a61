// Package http adapts the webhook handler to net/http
package http

import (
	"net/http"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

const (
	// DefaultMaxBodyBytes caps the webhook payload size.
	DefaultMaxBodyBytes int64 = 256 * 1024

	// RequestIDHeader is propagated into logs when present.
	RequestIDHeader = "X-Request-Id"
)

// Config holds adapter configuration
type Config struct {
	// Processor handles the delivery (required)
	Processor notifier.Processor

	// MaxBodyBytes limits the request body.
	// Default: 256 KiB
	MaxBodyBytes int64
}

// NewHandler returns an http.Handler that feeds each request to cfg.Processor.
// Rate limiting is configured on the processor (notifier.Config.RateLimit).
func NewHandler(cfg Config) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetSecurityHeaders(w.Header())
		resp := cfg.Processor.Handle(r.Context(), ReadRequest(w, r, cfg.MaxBodyBytes))
		WriteResponse(w, resp)
	})
}

// WriteResponse writes resp as a plain text body.
func WriteResponse(w http.ResponseWriter, resp notifier.Response) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write([]byte(resp.Body)); err != nil {
		return
	}
}

// SetSecurityHeaders marks webhook responses as uncacheable.
func SetSecurityHeaders(h http.Header) {
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
}
