package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fanpicks/platform/internal/app"
	"github.com/fanpicks/platform/internal/auth"
	"github.com/fanpicks/platform/internal/guard"
	"github.com/fanpicks/platform/internal/handler"
	"github.com/fanpicks/platform/internal/infra"
	"github.com/fanpicks/platform/internal/service"
	"github.com/fanpicks/platform/internal/sweep"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTPlayerExpiry, cfg.JWTAdminExpiry)

	// Object storage is optional; a nil uploader disables image uploads.
	var uploader service.ObjectUploader
	if cfg.StorageEnabled() {
		store, err := infra.NewObjectStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		uploader = store
		logger.Info("object storage enabled", "bucket", cfg.S3Bucket)
	}

	// Redis is optional; without it the sweep runs unlocked.
	var (
		locker       sweep.Locker
		healthChecks []handler.HealthCheck
	)
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		locker = infra.NewLockManager(rdb)
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info("connected to redis")
	}

	services := app.NewServices(pool, jwtMgr, uploader, logger)
	sweeper := sweep.New(services.Matches, locker, cfg.SweepConcurrency, logger.With("component", "sweep"))

	router := app.NewRouter(app.RouterDeps{
		Pool:              pool,
		JWTMgr:            jwtMgr,
		Logger:            logger,
		Services:          services,
		Sweeper:           sweeper,
		PredictionLimiter: guard.NewRateLimiter(cfg.PredictionRateLimit, cfg.PredictionRateWindow),
		CORSOrigins:       cfg.CORSAllowedOrigins,
		HealthChecks:      healthChecks,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if cfg.SettlementEnabled {
		settlementSvc, err := app.NewSettlement(pool, cfg, logger)
		if err != nil {
			return fmt.Errorf("settlement: %w", err)
		}
		g.Go(func() error {
			return settlementSvc.Run(gctx)
		})
	} else {
		logger.Info("settlement listener disabled")
	}

	if cfg.SweepEnabled {
		loc, err := time.LoadLocation(cfg.SweepTimezone)
		if err != nil {
			return fmt.Errorf("sweep timezone: %w", err)
		}
		g.Go(func() error {
			return sweeper.Schedule(gctx, cfg.SweepSchedule, loc)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
