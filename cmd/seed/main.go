// Command seed migrates the database and populates empty tables with the baseline fixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/config"
	"libapp/internal/core/services"
	"libapp/internal/fixtures"
	"libapp/internal/pkg/logger"
)

func main() {
	fixturesPath := flag.String("fixtures", "", "fixture file to load instead of the embedded default")
	flag.Parse()

	if err := run(*fixturesPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(fixturesPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if fixturesPath == "" {
		fixturesPath = cfg.Seed.FixturesPath
	}

	log := logger.New(logger.Options{
		ServiceName: "libapp-seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := fixtures.Load(fixturesPath)
	if err != nil {
		return err
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = config.CloseDatabase(db) }()

	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	report, err := services.NewSeeder(db, cfg, set, log).Initialize(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("seeded: %s\nskipped: %s\n", join(report.Seeded), join(report.Skipped))
	return nil
}

func join[T ~string](items []T) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, ", ")
}
