package main

import (
	"context"
	"errors"
	"net/http"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/repositories"
	"task-tracker/backend/internal/router"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, pool, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			defer pool.Close()

			if autoMigrate {
				if err := database.Migrate(pool.DB); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, log, pool)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before serving")
	return cmd
}

func newCache(cfg *config.Config, log *zap.Logger) *cache.MultiLevelCache {
	var l2 *cache.RedisCache
	if cfg.Redis.Enabled {
		l2 = cache.NewRedisCache(cfg.CacheConfig())
	}
	return cache.NewMultiLevelCache(l2, cache.Options{
		L1Size: cfg.Redis.L1Size,
		L1TTL:  cfg.Redis.L1TTL,
		Logger: log.Named("cache"),
	})
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, pool *database.DatabasePool) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := repositories.NewStore(pool.DB)
	summaryCache := newCache(cfg, log)
	defer summaryCache.Close()

	monitor := monitoring.NewMonitor()
	monitor.Health().Register("database", func(ctx context.Context) error { return pool.Health() })
	monitor.Health().Register("cache", summaryCache.Health)
	monitor.RegisterStats("database", pool.Stats)
	monitor.RegisterStats("cache", summaryCache.Stats)

	deps := router.Dependencies{
		Logger:  log.Named("http"),
		Monitor: monitor,
		CORS: router.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
		Tasks: services.NewCachedTaskService(
			services.NewTaskService(store, log.Named("tasks")),
			summaryCache,
			log.Named("tasks"),
		),
		Activity: services.NewActivityLogService(store, log.Named("activity")),
		Users:    services.NewUserService(store, log.Named("users")),
		Register: services.NewRegisterService(store, cfg.Auth.BCryptCost, log.Named("users")),
		Auth: services.NewAuthService(store, services.TokenConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		}, log.Named("auth")),
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewIPRateLimiter(middleware.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
	}

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Server.Environment),
			zap.Bool("redis", cfg.Redis.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
		return err
	}
	log.Info("goodbye")
	return nil
}
