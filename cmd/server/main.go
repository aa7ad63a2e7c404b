package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/kmehta/invoicehub/internal/config"
	"github.com/kmehta/invoicehub/internal/db"
	"github.com/kmehta/invoicehub/internal/logging"
	"github.com/kmehta/invoicehub/internal/server"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "run database migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "seed the admin account and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}
	if err := logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.Migrate(conn, db.MigrateConfig{
		UseSQLMigrations: cfg.App.Migrations,
		DatabaseURL:      cfg.Database.URL(),
	}); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if *migrateOnlyFlag {
		log.Info().Msg("migrations completed, exiting")
		return
	}

	if cfg.App.Seed || *seedOnlyFlag {
		if err := db.Seed(conn, cfg.App.AdminEmail, cfg.App.AdminPass); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		if *seedOnlyFlag {
			log.Info().Msg("seed completed, exiting")
			return
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.New(conn, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
