// Package fiber adapts the webhook handler to Fiber
package fiber

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// Handler returns a Fiber handler that feeds the raw request body to p.
// Register it with app.All so that non-POST methods reach the 405 gate.
// The body size limit is the app's BodyLimit, enforced by fasthttp before
// any handler runs.
func Handler(p notifier.Processor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")

		headers := make(map[string]string)
		for key, values := range c.GetReqHeaders() {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		req := notifier.Request{
			Method:    c.Method(),
			Headers:   headers,
			RequestID: c.Get(fiber.HeaderXRequestID),
			ClientIP:  c.IP(),
		}
		if req.Method == fiber.MethodPost {
			// fasthttp reuses the request buffer after the handler returns
			req.Body = append([]byte(nil), c.Body()...)
		}

		resp := p.Handle(c.UserContext(), req)
		return c.Status(resp.StatusCode).SendString(resp.Body)
	}
}
