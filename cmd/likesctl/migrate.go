package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/likes/internal/infrastructure/config"
	"github.com/mikiasgoitom/likes/internal/infrastructure/database"
)

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(e, func(m *database.Migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(e, func(m *database.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(e, func(m *database.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(e *env, fn func(m *database.Migrator) error) error {
	if e.cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrations apply to the %s store only, STORE_DRIVER is %s", config.StoreDriverPostgres, e.cfg.StoreDriver)
	}
	m, err := database.NewMigrator(e.cfg.DatabaseURL, e.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			e.logger.Warnf("closing migrator: %v", err)
		}
	}()
	return fn(m)
}
