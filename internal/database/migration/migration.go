// Package migration embeds the SQL schema and applies it with golang-migrate.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// Source returns the embedded migrations as a golang-migrate source driver.
func Source() (source.Driver, error) {
	d, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	return d, nil
}

// New builds a migrator for dsn over the embedded migrations. Callers must Close it.
func New(dsn string) (*migrate.Migrate, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// EnsureMigrated applies every pending up migration. An already current schema is not an error.
func EnsureMigrated(dsn string, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)
	log.Info("checking schema", "event", "db_migration_check")

	m, err := New(dsn)
	if err != nil {
		log.Error("migration setup failed", "event", "db_migration_failed", "error_message", err.Error())
		return err
	}
	defer m.Close()

	before, _, _ := m.Version()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema already current, skipping migration",
				"event", "db_migration_skip",
				"version", before,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
		log.Error("migration failed",
			"event", "db_migration_failed",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	after, dirty, _ := m.Version()
	log.Info("migrations applied",
		"event", "db_migration_success",
		"from_version", before,
		"to_version", after,
		"dirty", dirty,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
