package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"redirect-analytics/internal/config"
	httpHandler "redirect-analytics/internal/handler/http"
	"redirect-analytics/internal/repository"
	"redirect-analytics/internal/repository/postgres"
	redisrepo "redirect-analytics/internal/repository/redis"
	"redirect-analytics/internal/service"
	"redirect-analytics/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, appLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer appLogger.Close()

	appLogger.Info("Starting redirect service",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"base_url", cfg.App.BaseURL,
		"settings_backend", cfg.App.SettingsBackend,
	)

	// ==================== STORAGE ====================

	db, err := postgres.InitDB(ctx, cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()
	appLogger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	settingsRepo, ready, closeSettings, err := settingsStore(cfg, db, appLogger)
	if err != nil {
		return err
	}
	defer closeSettings()

	// ==================== SERVICES ====================

	aliasRepo := postgres.NewAliasRepository(db)
	redirectService := service.NewRedirectService(aliasRepo, appLogger.Logger, cfg.App.BaseURL)

	analyticsService := service.NewAnalyticsService(settingsRepo, appLogger.Logger)
	if err := analyticsService.Load(ctx); err != nil {
		return err
	}

	// ==================== HTTP ====================

	handler := httpHandler.NewHandler(redirectService, analyticsService, appLogger.Logger)

	opts := httpHandler.RouteOptions{
		AdminUser:     cfg.Admin.User,
		AdminPassword: cfg.Admin.Password,
		Ready:         ready,
	}
	if cfg.App.EnableMetrics {
		opts.Metrics = promhttp.Handler()
	}

	// Request -> Recovery -> RequestID -> Logging -> Metrics -> Router
	finalHandler := httpHandler.Chain(
		httpHandler.RecoveryMiddleware(appLogger.Logger),
		httpHandler.RequestIDMiddleware,
		httpHandler.LoggingMiddleware(appLogger.Logger),
		httpHandler.MetricsMiddleware,
	)(handler.Routes(opts))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// ==================== GRACEFUL SHUTDOWN ====================

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info("Server exited gracefully")
	return nil
}

// settingsStore picks the analytics settings backend. It returns the store,
// the readiness probe covering every backend in use and a cleanup func.
func settingsStore(cfg *config.Config, db *pgxpool.Pool, appLogger *logger.Logger) (repository.SettingsRepository, func(context.Context) error, func(), error) {
	if cfg.App.SettingsBackend != config.SettingsBackendRedis {
		return postgres.NewSettingsRepository(db), db.Ping, func() {}, nil
	}

	client, err := redisrepo.InitRedis(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	appLogger.Info("Redis connection established", "addr", cfg.Redis.RedisAddr())

	ready := func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			appLogger.Warn("Failed to close redis client", "error", err)
		}
	}

	return redisrepo.NewSettingsStore(client, cfg.Redis.SettingsKey), ready, closeFn, nil
}
