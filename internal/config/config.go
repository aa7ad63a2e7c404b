// Package config provides application configuration loaded from
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig holds connection settings. Driver selects postgres for
// deployments or sqlite for local development and tests.
type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"invoicehub"`
	Password string `env:"DB_PASSWORD" envDefault:"invoicehub123"`
	DBName   string `env:"DB_NAME" envDefault:"invoicehub"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// Path is the sqlite database file, used when Driver is "sqlite".
	Path string `env:"DB_PATH" envDefault:"invoicehub.db"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"devjwtsecret"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"30m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
}

// SMTPConfig holds mail delivery settings. An empty Host switches the
// mailer to the logging sender.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"billing@localhost"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"console"`
	Migrations bool   `env:"MIGRATIONS" envDefault:"false"`
	Seed       bool   `env:"DB_SEED" envDefault:"false"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPass  string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// DSN returns the postgres connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the postgres connection string in URL format, which is
// what golang-migrate expects.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
