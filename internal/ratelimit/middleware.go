package ratelimit

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// KeyFunc extracts the client identity from a request.
type KeyFunc func(c *fiber.Ctx) string

// FiberKey is the default KeyFunc built on ClientKey.
func FiberKey(c *fiber.Ctx) string {
	return ClientKey(c.IP(), c.Get(fiber.HeaderXForwardedFor))
}

// RejectFunc is notified of every refused request.
type RejectFunc func(c *fiber.Ctx, key string, d Decision)

// Config describes one limiter instance placed in front of some routes.
type Config struct {
	Limiter  *Limiter
	KeyFunc  KeyFunc
	Message  string
	OnReject RejectFunc
}

// Middleware enforces cfg.Limiter. Refused requests get 429, a Retry-After
// header and the plain-text cfg.Message; they never reach the next handler.
// A nil Limiter lets everything through.
func Middleware(cfg Config) fiber.Handler {
	if cfg.Limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	key := cfg.KeyFunc
	if key == nil {
		key = FiberKey
	}
	msg := cfg.Message
	if msg == "" {
		msg = "Too many requests, please try again later."
	}

	return func(c *fiber.Ctx) error {
		k := strings.Clone(key(c))
		d := cfg.Limiter.Allow(k)
		if d.Allowed {
			return c.Next()
		}
		if cfg.OnReject != nil {
			cfg.OnReject(c, k, d)
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(d.RetryAfterSeconds()))
		return c.Status(fiber.StatusTooManyRequests).SendString(msg)
	}
}
