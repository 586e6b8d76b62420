package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/joho/godotenv/autoload"

	"docflow/internal/config"
	"docflow/internal/database"
	"docflow/internal/database/migration"
	"docflow/internal/logger"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (defaults to the DB_* environment)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.Location())
	fail := func(msg string, err error) {
		log.Error(msg, "event", "db_migration_failed", "error_message", err.Error())
		os.Exit(1)
	}

	if *dsn == "" {
		built, err := database.BuildPostgresDSN(cfg.Database)
		if err != nil {
			fail("invalid database configuration", err)
		}
		*dsn = built
	}

	m, err := migration.New(*dsn)
	if err != nil {
		fail("failed to create migrator", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fail("failed to get version", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			fail("failed to force version", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("failed to run up migrations", err)
		}
		fmt.Println("migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("failed to run down migrations", err)
		}
		fmt.Println("migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("failed to run migrations", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-dsn <connection-string>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
