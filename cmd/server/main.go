package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/careboard/importer/internal/config"
	"github.com/careboard/importer/internal/importer"
	"github.com/careboard/importer/internal/logging"
	"github.com/careboard/importer/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"destination_table", cfg.Database.Table,
		"staging_dir", cfg.Staging.Dir,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	// Bootstrap the destination table on first run
	if err := importer.EnsureDestination(ctx, pool, cfg.Database.Table); err != nil {
		slog.Error("failed to ensure destination table", "error", err)
		os.Exit(1)
	}

	stager, err := importer.NewStager(cfg.Staging.Dir)
	if err != nil {
		slog.Error("failed to create staging directory", "error", err)
		os.Exit(1)
	}

	janitorCfg := importer.JanitorConfig{
		MaxAge:        cfg.Staging.MaxAge,
		MaxTotalBytes: cfg.Staging.MaxTotalBytes,
		Interval:      cfg.Staging.CleanupInterval,
	}
	service := importer.NewService(pool, stager, cfg.Database.Table, janitorCfg)

	server := web.NewServer(service, pool, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go stager.StartCleanupScheduler(jobCtx, janitorCfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
