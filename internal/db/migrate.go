package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// register the postgres driver and file source for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/models"
)

// Migrate brings the schema up to date. SQL migrations run against
// postgres when enabled; AutoMigrate stays the dev/sqlite path.
func Migrate(conn *gorm.DB, cfg MigrateConfig) error {
	if cfg.UseSQLMigrations {
		if err := runSQLMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		return nil
	}
	return AutoMigrate(conn)
}

// MigrateConfig selects the migration mechanism.
type MigrateConfig struct {
	UseSQLMigrations bool
	DatabaseURL      string
}

// AutoMigrate creates/updates tables from the model list.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range []any{
		&models.User{},
		&models.Company{},
		&models.Client{},
		&models.Item{},
		&models.Invoice{},
		&models.InvoiceItem{},
	} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	// sanity check on the two tables everything else hangs off
	for _, table := range []string{"users", "invoices"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations executes the migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(databaseURL string) error {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
