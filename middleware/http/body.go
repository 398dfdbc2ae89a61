package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// ReadBody reads the whole request body, enforcing limit. The bytes are
// returned untouched since the signature covers them exactly.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", notifier.ErrPayloadTooLarge, limit)
		}
		return nil, fmt.Errorf("%w: %w", notifier.ErrInvalidPayload, err)
	}
	return body, nil
}

// ReadRequest converts r into a delivery. Only POST bodies are read; any
// other method goes to the processor's method gate without touching the body.
// Read failures travel in BodyErr so the processor logs and answers them.
func ReadRequest(w http.ResponseWriter, r *http.Request, limit int64) notifier.Request {
	req := notifier.Request{
		Method:    r.Method,
		Headers:   firstValues(r.Header),
		RequestID: r.Header.Get(RequestIDHeader),
		ClientIP:  ClientIP(r),
	}
	if r.Method == http.MethodPost {
		req.Body, req.BodyErr = ReadBody(w, r, limit)
	}
	return req
}

// ClientIP returns the first X-Forwarded-For hop, or the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func firstValues(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return headers
}
