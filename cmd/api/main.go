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

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/catalog"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/here"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/http"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/lidar"
	natsadapter "github.com/Hamza-Xoho/digital-surveyor/internal/adapters/nats"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/openelevation"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/osdatahub"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/overpass"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/postcodesio"
	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/valkey"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/usecases"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/config"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Tracing
	if cfg.Telemetry.Enabled {
		shutdownTracing, err := telemetry.Setup(context.Background(),
			"digital-surveyor", cfg.Telemetry.Endpoint, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("tracing unavailable, continuing without spans", "error", err)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					slog.Warn("trace exporter shutdown", "error", err)
				}
			}()
		}
	}

	// Cache backend
	var store geocache.Store
	switch cfg.Cache.Backend {
	case "valkey":
		vk, err := valkey.New(cfg.Cache.ValkeyAddr)
		if err != nil {
			slog.Warn("valkey unavailable, falling back to memory cache", "error", err)
			store = geocache.NewMemoryStore()
		} else {
			defer vk.Close()
			store = vk
		}
	default:
		store = geocache.NewMemoryStore()
	}
	cache := geocache.New(store, logging.Component("geocache"))

	// Assessment event publisher
	var publisher *natsadapter.Publisher
	if cfg.NATS.Enabled {
		publisher, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, assessment events disabled", "error", err)
		} else {
			defer publisher.Close()
		}
	}

	// Vehicle catalog
	fleet, err := catalog.Load(cfg.Pipeline.VehicleFile)
	if err != nil {
		log.Fatalf("vehicle catalog: %v", err)
	}

	// Providers
	geocoder := postcodesio.New(cfg.Providers.PostcodesURL, cache)
	features := []ports.FeatureProvider{
		osdatahub.New(cfg.Providers.OSAPIKey, "", cache),
		overpass.New(cfg.Providers.OverpassURL, cache),
	}
	elevation := []ports.ElevationProvider{
		lidar.New(cfg.Providers.LidarTileDir),
		openelevation.New(cfg.Providers.OpenMeteoURL, cfg.Providers.OpenElevationURL),
	}
	routing := here.New(cfg.Providers.HereAPIKey, "", cache)

	// Use cases
	width := usecases.NewWidthService(cfg.Pipeline.WidthSamples)
	gradient := usecases.NewGradientService()
	turning := usecases.NewTurningService(cfg.Pipeline.TurningGridSize)
	scoring := usecases.NewScoringService(width, gradient)

	assessments := usecases.NewAssessmentService(usecases.AssessmentDeps{
		Geocoder:         geocoder,
		Features:         features,
		Elevation:        elevation,
		Routing:          routing,
		Catalog:          fleet,
		Publisher:        eventPublisher(publisher),
		Width:            width,
		Gradient:         gradient,
		Turning:          turning,
		Scoring:          scoring,
		SearchRadiusM:    cfg.Pipeline.SearchRadiusM,
		RestrictionLimit: cfg.Pipeline.RestrictionLimit,
		StageTimeout:     time.Duration(cfg.Pipeline.StageTimeout) * time.Second,
		Log:              logging.Component("pipeline"),
	})

	deps := &http.Dependencies{
		Assessments: assessments,
		Catalog:     fleet,
		Publisher:   publisher,
		Cache:       store,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Digital Surveyor API",
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

	// Give in-flight assessments up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// eventPublisher keeps a nil *Publisher from becoming a non-nil
// interface value in the pipeline deps.
func eventPublisher(p *natsadapter.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
