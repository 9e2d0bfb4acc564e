package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/missionplanner/internal/pkg/metrics"
)

const defaultRateLimit = 240

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP; counters live in Valkey when configured
	maxPerMinute := deps.RateLimit
	if maxPerMinute <= 0 {
		maxPerMinute = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxPerMinute,
		Expiration: 1 * time.Minute,
		Storage:    deps.limiterStorage(),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
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

	// ETag for polling clients
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Mission API v1
	const handlerTimeout = 5 * time.Second
	v1 := app.Group("/v1")
	v1.Get("/mission", timeout.NewWithContext(MissionHandler(deps), handlerTimeout))
	v1.Get("/lines", timeout.NewWithContext(ListLinesHandler(deps), handlerTimeout))
	v1.Get("/lines/:id", timeout.NewWithContext(GetLineHandler(deps), handlerTimeout))
	v1.Post("/lines/:id/insert", timeout.NewWithContext(InsertPolygonHandler(deps), handlerTimeout))
	v1.Get("/staging", timeout.NewWithContext(StagingHandler(deps), handlerTimeout))
	v1.Delete("/staging", timeout.NewWithContext(DiscardStagingHandler(deps), handlerTimeout))
	v1.Post("/staging/import", timeout.NewWithContext(ImportStagingHandler(deps), handlerTimeout))
	v1.Post("/modes/:kind", timeout.NewWithContext(StartModeHandler(deps), handlerTimeout))
	v1.Delete("/modes", timeout.NewWithContext(CancelModeHandler(deps), handlerTimeout))

	// Map engine gesture ingress
	v1.Post("/gestures", timeout.NewWithContext(GestureHandler(deps), handlerTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay of map commands and mission events
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
