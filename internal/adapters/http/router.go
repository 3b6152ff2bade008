package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
)

const (
	requestTimeout = 15 * time.Second
	rebuildTimeout = 2 * time.Minute
)

// optimizeSunset is when the legacy optimize alias stops being served.
var optimizeSunset = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/tours/:id/optimize", SunsetDate: optimizeSunset, Alternative: "/v1/tours/{id}/rescore"},
	}))

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/tours/:id", timeout.NewWithContext(GetTourHandler(deps), requestTimeout))
	v1.Post("/tours/:id/rescore", timeout.NewWithContext(RescoreTourHandler(deps), requestTimeout))
	v1.Post("/tours/:id/optimize", timeout.NewWithContext(RescoreTourHandler(deps), requestTimeout))
	v1.Get("/tours/:id/gaps", timeout.NewWithContext(TourGapsHandler(deps), requestTimeout))
	v1.Get("/tours/:id/gaps/:gapId/suggestions", timeout.NewWithContext(GapSuggestionsHandler(deps), requestTimeout))

	v1.Post("/stops/:id/status", timeout.NewWithContext(StopStatusHandler(deps), requestTimeout))
	v1.Get("/stops/:id/transitions", timeout.NewWithContext(StopTransitionsHandler(deps), requestTimeout))

	v1.Post("/network/rebuild", timeout.NewWithContext(RebuildNetworkHandler(deps), rebuildTimeout))
	v1.Get("/venues/:id/partners", timeout.NewWithContext(VenuePartnersHandler(deps), requestTimeout))
	v1.Get("/venues/:id/pair/:other", timeout.NewWithContext(VenuePairHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
