// Package db owns database connectivity, schema migration and seeding.
package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmehta/invoicehub/internal/config"
)

// Connect opens the configured database. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which
// the invoice number allocator relies on.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	if cfg.Driver == "sqlite" {
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", cfg.Path)
		conn, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		return conn, nil
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}
	return conn, nil
}
