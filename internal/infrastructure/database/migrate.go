package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded PostgreSQL schema migrations.
type Migrator struct {
	migrate *migrate.Migrate
	logger  usecasecontract.IAppLogger
}

func NewMigrator(databaseURL string, logger usecasecontract.IAppLogger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

// Up applies every pending migration. A dirty version left by a failed run is
// forced clean before retrying.
func (m *Migrator) Up() error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		m.logger.Warnf("schema version %d is dirty, forcing", version)
		if err := m.migrate.Force(int(version)); err != nil {
			return fmt.Errorf("forcing schema version %d: %w", version, err)
		}
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Infof("schema is up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}
	version, _, _ = m.migrate.Version()
	m.logger.Infof("schema migrated to version %d", version)
	return nil
}

// Down rolls back a single migration.
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Infof("nothing to roll back")
			return nil
		}
		return fmt.Errorf("rolling back migration: %w", err)
	}
	version, _, _ := m.migrate.Version()
	m.logger.Infof("schema rolled back to version %d", version)
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("closing migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing migration database: %w", dbErr)
	}
	return nil
}
