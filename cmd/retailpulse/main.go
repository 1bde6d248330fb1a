package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/retailpulse/retailpulse/internal/app"
	"github.com/retailpulse/retailpulse/internal/dashboard"
	dashboardhttp "github.com/retailpulse/retailpulse/internal/dashboard/http"
	"github.com/retailpulse/retailpulse/internal/dashboard/provider"
	"github.com/retailpulse/retailpulse/internal/dashboard/ui"
	"github.com/retailpulse/retailpulse/internal/observability"
	"github.com/retailpulse/retailpulse/internal/platform/cache"
	"github.com/retailpulse/retailpulse/internal/shared"
	"github.com/retailpulse/retailpulse/internal/view"
	"github.com/retailpulse/retailpulse/jobs"
)

const sessionCookie = "retailpulse_session"

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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	source, err := provider.New(cfg.DataSource, cfg.DataYear, cfg.DataSeed)
	if err != nil {
		logger.Error("init data provider", slog.Any("error", err))
		os.Exit(1)
	}
	loader := provider.NewLoader(source)
	if _, err := loader.Load(ctx); err != nil {
		// The page keeps serving its no-data state.
		logger.Error("load dashboard snapshot", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	viewCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	service := dashboard.NewService(loader, viewCache, dashboard.WithRecorder(metrics))

	go func() {
		err := viewCache.ListenForInvalidation(ctx, func(version int64) {
			logger.Info("dashboard cache invalidated", slog.Int64("version", version))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	dashboardHandler := dashboardhttp.NewHandler(logger, service, templates, ui.Renderer{}, ui.Renderer{}, csrfManager)

	redisOpts, err := cfg.AsynqRedisOpt()
	if err != nil {
		logger.Error("asynq redis options", slog.Any("error", err))
		os.Exit(1)
	}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("source", cfg.DataSource))
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
