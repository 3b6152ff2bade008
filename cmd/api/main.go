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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/http"
	natsadapter "github.com/morgankhalil/VenueConnect-sub003/internal/adapters/nats"
	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/postgres"
	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/valkey"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/config"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/logging"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("venueconnect-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

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

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		vc = nil
	} else {
		defer vc.Close()
		cache = vc
	}

	// NATS
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	tourRepo := postgres.NewTourRepo(db)
	stopRepo := postgres.NewStopRepo(db)
	venueRepo := postgres.NewVenueRepo(db)
	artistRepo := postgres.NewArtistRepo(db)
	networkRepo := postgres.NewNetworkRepo(db)

	// Use cases
	tourSvc := usecases.NewTourService(tourRepo, venueRepo, publisher, cache, cfg.Engine.Routing())
	bookingSvc := usecases.NewBookingService(stopRepo, tourSvc, publisher)
	gapSvc := usecases.NewGapService(tourRepo, venueRepo, artistRepo, cache, cfg.Engine.Routing(), cfg.Engine.CandidatePoolLimit)
	networkSvc := usecases.NewNetworkService(venueRepo, networkRepo, publisher, cache, cfg.Engine.Network())

	deps := &http.Dependencies{
		Tours:    tourSvc,
		Bookings: bookingSvc,
		Gaps:     gapSvc,
		Network:  networkSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    vc,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "VenueConnect Routing API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			}
		}
	}()

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

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
