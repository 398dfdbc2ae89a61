// Package gin adapts the webhook handler to Gin
package gin

import (
	gongin "github.com/gin-gonic/gin"

	webhookhttp "github.com/mihaimyh/checkoutmail/middleware/http"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// Handler returns a Gin handler that feeds the raw request body to p.
// Register it with router.Any so that non-POST methods reach the 405 gate.
func Handler(p notifier.Processor) gongin.HandlerFunc {
	return func(c *gongin.Context) {
		webhookhttp.SetSecurityHeaders(c.Writer.Header())

		req := webhookhttp.ReadRequest(c.Writer, c.Request, webhookhttp.DefaultMaxBodyBytes)
		req.ClientIP = c.ClientIP()

		resp := p.Handle(c.Request.Context(), req)
		c.String(resp.StatusCode, resp.Body)
	}
}
