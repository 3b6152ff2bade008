package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Response().Header.Peek(fiber.HeaderCacheControl); len(existing) > 0 {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case strings.HasSuffix(path, "/suggestions"):
		return "public, max-age=300"
	case strings.HasSuffix(path, "/partners"):
		return "public, max-age=300"
	case strings.HasPrefix(path, "/v1/venues/") && strings.Contains(path, "/pair/"):
		return "public, max-age=600"
	case strings.HasSuffix(path, "/gaps"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/tours/") || strings.HasPrefix(path, "/v1/stops/"):
		// booking state changes under the client's feet
		return "private, no-cache"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
