package middleware

import (
	"context"
	"items/pkg/requestid"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// NewRequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one,
// echoes it on the response and exposes it to handlers through the user context.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(requestid.Header))
		if id == "" {
			id = requestid.Generate()
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		c.SetUserContext(requestid.NewContext(userCtx, id))
		c.Set(requestid.Header, id)

		return c.Next()
	}
}
