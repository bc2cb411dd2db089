package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/cache"
	"github.com/Simplici0/carcost/internal/config"
	"github.com/Simplici0/carcost/internal/db"
	"github.com/Simplici0/carcost/internal/live"
	"github.com/Simplici0/carcost/internal/logging"
	"github.com/Simplici0/carcost/internal/migrations"
	"github.com/Simplici0/carcost/internal/seed"
	"github.com/Simplici0/carcost/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "carcost server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      "stderr",
		Development: cfg.IsDev(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database, cfg.MigrationsDir); err != nil {
			return err
		}
	}

	stats, err := seed.Run(ctx, database)
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("existing", stats.Existing))

	repo, closeCache := newCacheRepository(ctx, cfg, logger)
	defer closeCache()

	hub := live.NewHub(logger)
	go hub.Run(ctx)

	srv := newServer(logger, store.New(database), cache.NewMemo(repo, logger), hub)
	srv.recompute = live.NewDebouncer(cfg.RecomputeDebounce, srv.broadcastBreakdowns)
	defer srv.recompute.Stop()
	if cfg.EstimateRateLimit > 0 {
		srv.limiter = newRateLimiter(cfg.EstimateRateLimit, time.Minute)
		go srv.limiter.run(ctx)
	}
	hub.SetInitDataProvider(srv.initData)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func newCacheRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Repository, func()) {
	if cfg.RedisAddr == "" {
		memory := cache.NewMemoryCache(cfg.CacheTTL)
		go memory.Run(ctx, cfg.CacheTTL)
		return memory, func() {}
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, breakdowns will be recomputed on every request", zap.Error(err))
	} else {
		logger.Info("using redis breakdown cache", zap.String("addr", cfg.RedisAddr))
	}
	return redisCache, func() { _ = redisCache.Close() }
}
