package middlewares

import (
	"time"

	"note-keeper/cmd/server/handlers/httperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// BuildRateLimiter caps requests per client IP to max within each
// expiration window and answers 429 beyond that. Counters live in storage
// when it is non-nil (Redis in production) and in process memory otherwise.
// A max of zero or less disables the limit.
func BuildRateLimiter(max int, expiration time.Duration, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})
}
