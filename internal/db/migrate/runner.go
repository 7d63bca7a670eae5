// Package migrate applies the portal's schema migrations, embedded in the
// binary so deploys never depend on a migrations directory on disk.
package migrate

import (
	"errors"
	"fmt"

	"roster-portal/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange reports that the database is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Up applies all pending migrations.
func Up(dsn string) error {
	return run(dsn, func(m *migrate.Migrate) error { return m.Up() })
}

// Down rolls back all applied migrations.
func Down(dsn string) error {
	return run(dsn, func(m *migrate.Migrate) error { return m.Down() })
}

func run(dsn string, step func(*migrate.Migrate) error) error {
	if dsn == "" {
		return errors.New("database DSN is empty")
	}
	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("connect for migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
