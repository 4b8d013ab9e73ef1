package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/tidemap/enviro-aggregation/internal/api/http"
	"github.com/tidemap/enviro-aggregation/internal/config"
	"github.com/tidemap/enviro-aggregation/internal/geocode"
	"github.com/tidemap/enviro-aggregation/internal/health"
	"github.com/tidemap/enviro-aggregation/internal/journal"
	"github.com/tidemap/enviro-aggregation/internal/series"
	"github.com/tidemap/enviro-aggregation/internal/series/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls. Per-call state lives
	// on each request, never on the client.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	marine := providers.NewMarineClient(httpClient, cfg.MarineBaseURL)
	forecast := providers.NewForecastClient(httpClient, cfg.ForecastBaseURL)
	archive := providers.NewArchiveClient(httpClient, cfg.ArchiveBaseURL)
	gauge := providers.NewTideGaugeClient(httpClient, cfg.TideGaugeBaseURL, cfg.TideMaxRangeDays)

	// Reverse geocoding needs an API key; without one, results simply have
	// no locationContext.
	var namer series.LocationNamer
	if cfg.GeocoderAPIKey != "" {
		namer = geocode.New(cfg.GeocoderAPIKey)
	}

	svc := series.NewService(marine, forecast, archive, gauge, namer, series.ServiceConfig{
		FetchTimeout:   cfg.HTTPTimeout,
		HistoryCapDays: cfg.HistoryCapDays,
		TraceMaxSteps:  cfg.TraceMaxSteps,
	})

	jrnl := journal.New(cfg.JournalMaxEntries, cfg.JournalMaxAge)

	monitor := health.New(httpClient, map[string]string{
		"marine":           cfg.MarineBaseURL,
		"weather-forecast": cfg.ForecastBaseURL,
		"weather-archive":  cfg.ArchiveBaseURL,
		"tide-gauge":       cfg.TideGaugeBaseURL,
	}, cfg.ProbeInterval)
	if err := monitor.Start(); err != nil {
		log.Fatalf("failed to start provider health monitor: %v", err)
	}
	defer monitor.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "enviro-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "enviro-aggregation",
			"providers": monitor.Status(),
		})
	})

	httpapi.RegisterRoutes(app, svc, jrnl)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
