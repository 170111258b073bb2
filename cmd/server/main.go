package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/config"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/logging"
	"github.com/sitebrand/internal/router"
	"github.com/sitebrand/internal/seed"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)
	if cfg.UsesDefaultSessionSecret() {
		logger.Warn("using the default session secret; set SESSION_SECRET before exposing this server", slog.String("gin_mode", cfg.GinMode))
	}

	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if created, err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure super root user: %v", err)
	} else if created {
		logger.Info("created operator account", slog.String("username", cfg.SuperRootUserName))
	}

	if cfg.SeedFile != "" {
		if _, err := seed.NewSeeder(db.DB, logger).ApplyFile(context.Background(), cfg.SeedFile); err != nil {
			log.Fatalf("failed to apply seed file: %v", err)
		}
	}

	r, err := router.SetupRouter(router.Options{
		DB:                 db.DB,
		SessionSecret:      cfg.SessionSecret,
		Logger:             logger,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		log.Fatalf("failed to set up router: %v", err)
	}

	logger.Info("listening", slog.String("addr", cfg.ListenAddr), slog.String("database", cfg.DatabaseDriver))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
