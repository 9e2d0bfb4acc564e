package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/missionplanner/internal/adapters/valkey"
	"github.com/samirrijal/missionplanner/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Mission *usecases.MissionService
	NATS    *nats.Conn
	Limiter *valkey.Storage

	// RateLimit is the number of requests allowed per IP per minute. Zero uses the default.
	RateLimit int
}

func (d *Dependencies) limiterStorage() fiber.Storage {
	if d.Limiter == nil {
		return nil
	}
	return d.Limiter
}
