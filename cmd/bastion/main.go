package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bastionworks/bastion/internal/app"
	"github.com/bastionworks/bastion/internal/gate"
	"github.com/bastionworks/bastion/internal/grants"
	"github.com/bastionworks/bastion/internal/identity"
	"github.com/bastionworks/bastion/internal/observability"
	"github.com/bastionworks/bastion/internal/platform/db"
	"github.com/bastionworks/bastion/internal/projects"
	"github.com/bastionworks/bastion/internal/rights"
	"github.com/bastionworks/bastion/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping", slog.Any("error", err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	store := rights.NewStore(pool)

	var provider identity.Provider = identity.NewHTTPProvider(cfg.ProviderURL, cfg.ProviderTimeout)
	if cfg.IdentityCacheTTL > 0 {
		if redisClient != nil {
			provider = identity.NewRedisCache(provider, redisClient, cfg.IdentityCacheTTL, logger)
		} else {
			provider = identity.NewMemoryCache(provider, cfg.IdentityCacheTTL, logger)
		}
	}
	resolver := identity.NewResolver(provider, store)

	if cfg.AuthDisabled {
		logger.Warn("authentication disabled by configuration")
	}
	accessGate := gate.New(resolver, logger, cfg.AuthDisabled, app.PublicPaths())

	usersHandler := users.NewHandler(logger, users.NewService(provider, store))
	projectsHandler := projects.NewHandler(logger, projects.NewService(store))
	grantsHandler := grants.NewHandler(logger, grants.NewService(store, resolver, logger))
	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Gate:            accessGate,
		UsersHandler:    usersHandler,
		ProjectsHandler: projectsHandler,
		GrantsHandler:   grantsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
