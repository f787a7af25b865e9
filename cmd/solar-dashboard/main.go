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

	httpapi "solar-dashboard/internal/api/http"
	"solar-dashboard/internal/config"
	"solar-dashboard/internal/dashboard"
	"solar-dashboard/internal/geocode"
	"solar-dashboard/internal/scheduler"
	"solar-dashboard/internal/store"
	"solar-dashboard/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound Open-Meteo calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// File-backed persisted state, one JSON file per key.
	backend, err := store.NewFile(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open data dir %s: %v", cfg.DataDir, err)
	}
	cache := store.NewCache(backend)

	// Outbound clients with resilience (backoff + circuit breaker).
	weatherClient := weather.NewClient(httpClient, cfg.WeatherBaseURL)
	resolver := geocode.NewResolver(httpClient, cfg.GeocodeBaseURL, cache)

	// Core service restoring last location and capacity from the cache.
	service := dashboard.NewService(weatherClient, cache, resolver)

	// Scheduler that keeps today's cached observation current.
	sched := scheduler.New(service, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "solar-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "solar-dashboard",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, resolver, cfg.ForecastDays)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
