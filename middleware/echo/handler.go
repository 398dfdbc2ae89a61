// Package echo adapts the webhook handler to Echo
package echo

import (
	"github.com/labstack/echo/v4"

	webhookhttp "github.com/mihaimyh/checkoutmail/middleware/http"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// Handler returns an Echo handler that feeds the raw request body to p.
// Register it with e.Any so that non-POST methods reach the 405 gate.
func Handler(p notifier.Processor) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		res := c.Response()
		webhookhttp.SetSecurityHeaders(res.Header())

		req := webhookhttp.ReadRequest(res, r, webhookhttp.DefaultMaxBodyBytes)
		req.ClientIP = c.RealIP()

		resp := p.Handle(r.Context(), req)
		return c.String(resp.StatusCode, resp.Body)
	}
}
