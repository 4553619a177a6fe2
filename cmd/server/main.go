package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"libapp/internal/adapters/http/middleware"
	"libapp/internal/adapters/http/routes"
	"libapp/internal/adapters/persistence/models"
	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/config"
	"libapp/internal/core/services"
	"libapp/internal/fixtures"
	"libapp/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"

	_ "libapp/docs" // Swagger docs
)

// @title LibApp API
// @version 1.0
// @description Library catalog, membership and identity API.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "libapp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Options{
		ServiceName: "libapp",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Error(ctx, "closing database failed", err)
		}
	}()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info(ctx, "database migration completed")

	set, err := fixtures.Load(cfg.Seed.FixturesPath)
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	seeder := services.NewSeeder(db, cfg, set, log)

	// Seed baseline data; empty tables only
	if cfg.Seed.Enabled {
		if _, err := seeder.Initialize(ctx); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	// Purge expired refresh tokens on schedule
	cronService, err := services.NewCronService(repositories.NewRefreshTokenRepository(db), cfg.JWT.CleanupSchedule, log)
	if err != nil {
		return err
	}
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LibApp API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg, log)
	routes.Setup(app, db, cfg, seeder, log)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Info(log.WithFields(ctx, map[string]any{
		"port": cfg.App.Port,
		"mode": cfg.App.Mode,
	}), "server starting")
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := context.Background()
	log.Info(ctx, "shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error(ctx, "error during shutdown", err)
	}
	log.Info(ctx, "server stopped gracefully")
}
