package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out of the HTTP server.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key holding the id. The access log
	// and the error envelope both read it, so a failed match or ingest can be
	// tied to its log line.
	RequestIDLocalKey = "request_id"
)

// RequestID reuses an inbound X-Request-ID (e.g. one set by a load balancer or
// an S3 webhook relay) or mints a UUID, and echoes it on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
