package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migration N creates the schema of store version N.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// runMigrations brings the store at dbPath up to the requested version.
// It never migrates down: a store newer than the requested version is refused.
// Cancelling ctx stops the run after the migration in progress.
func runMigrations(ctx context.Context, dbPath string, version int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrSchemaUpgrade, err)
	}


	// A separate connection, since closing the migrate instance closes its database.
	migrateDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return fmt.Errorf("%w: open migration database: %w", ErrConnection, err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%w: create sqlite driver: %w", ErrSchemaUpgrade, err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: create iofs source: %w", ErrSchemaUpgrade, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: create migrate instance: %w", ErrSchemaUpgrade, err)
	}
	defer m.Close()

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		// Fresh store.
	case err != nil:
		return fmt.Errorf("%w: check schema version: %w", ErrSchemaUpgrade, err)
	case dirty:
		return fmt.Errorf("%w: schema version %d is dirty", ErrSchemaUpgrade, current)
	case current > uint(version):
		return fmt.Errorf("%w: store is at version %d, requested version %d", ErrConnection, current, version)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Migrate(uint(version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: migrate to version %d: %w", ErrSchemaUpgrade, version, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: migrate to version %d: %w", ErrSchemaUpgrade, version, err)
	}

	return nil
}
