// Package rayid provides request tracing middleware.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the request/response header carrying the ray id.
const HeaderName = "X-Ray-Id"

// New returns a middleware that assigns a ray id to every request.
// An incoming X-Ray-Id header is honored so upstream proxies can trace
// across hops; otherwise a fresh UUID is generated. The id is stored in
// c.Locals("ray_id") and echoed on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
