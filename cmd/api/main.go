package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/missionplanner/internal/adapters/http"
	natsadapter "github.com/samirrijal/missionplanner/internal/adapters/nats"
	"github.com/samirrijal/missionplanner/internal/adapters/valkey"
	"github.com/samirrijal/missionplanner/internal/core/ports"
	"github.com/samirrijal/missionplanner/internal/core/usecases"
	"github.com/samirrijal/missionplanner/internal/pkg/config"
	"github.com/samirrijal/missionplanner/internal/pkg/logging"
	"github.com/samirrijal/missionplanner/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("missionplanner-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// NATS links the planner to the browser map engine. Without it the
	// planner still runs; drawing modes switch without arming anything.
	var (
		engine   ports.MapEngine
		events   ports.EventPublisher
		natsConn *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			engine, events, natsConn = pub, pub, pub.Conn()
		}
	}

	mission := usecases.NewMissionService(engine, events)

	// Gestures the map engine publishes over NATS
	if natsConn != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("gesture subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeGestures(ctx, mission.CompleteGesture); err != nil {
				slog.Warn("subscribe gestures failed", "error", err)
			}
		}
	}

	// Shared rate limiter storage
	var limiterStore *valkey.Storage
	if cfg.Valkey.Enabled {
		limiterStore, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable, limiter falls back to memory", "error", err)
		} else {
			defer limiterStore.Close()
		}
	}

	deps := &http.Dependencies{
		Mission:   mission,
		NATS:      natsConn,
		Limiter:   limiterStore,
		RateLimit: cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "Mission Planner API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
