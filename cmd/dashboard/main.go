package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ulleunglab/transport-dashboard/internal/adapter/httpapi"
	"github.com/ulleunglab/transport-dashboard/internal/cache"
	"github.com/ulleunglab/transport-dashboard/internal/config"
	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
)

func main() {
	// .env is a local development convenience; absence is normal.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The snapshot cache is optional; the dashboard recomputes from the
	// CSV sources whenever Redis is absent or unreachable.
	var cacheStore cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.CachePrefix)
		if err != nil {
			logger.Error("redis unavailable, snapshot cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			cacheStore = redisStore
			logger.Info("snapshot cache enabled", "addr", cfg.RedisAddr, "prefix", cfg.CachePrefix)
		}
	} else {
		logger.Info("snapshot cache disabled")
	}

	sources := dataset.Sources{
		DataDir:          cfg.DataDir,
		AccidentPhotoDir: cfg.AccidentPhotoDir,
		RockfallPhotoDir: cfg.RockfallPhotoDir,
	}
	loader := dataset.NewLoader(logger, metrics)
	store := dataset.NewStore(sources, loader, logger, metrics, cacheStore, cfg.CacheTTL)

	// Missing source files load as empty tables, so a failure here means
	// the data directory itself is unreadable.
	if err := store.Refresh(ctx); err != nil {
		logger.Error("initial snapshot load failed", "data_dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	api := httpapi.NewAPI(store, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, api, logger, cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the periodic snapshot refresh.
	go func() {
		if err := store.Run(ctx, cfg.RefreshInterval); err != nil {
			logger.Error("snapshot refresh loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
