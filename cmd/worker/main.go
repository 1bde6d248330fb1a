package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailpulse/retailpulse/internal/app"
	"github.com/retailpulse/retailpulse/internal/dashboard"
	"github.com/retailpulse/retailpulse/internal/dashboard/provider"
	jobmetrics "github.com/retailpulse/retailpulse/internal/jobs"
	"github.com/retailpulse/retailpulse/internal/platform/cache"
	"github.com/retailpulse/retailpulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	service := dashboard.NewService(provider.NewLoader(source), dashboard.NewCache(redisClient, cfg.CacheTTL))

	warmupJob := jobs.NewDashboardWarmupJob(service, logger, jobmetrics.NewMetrics(prometheus.DefaultRegisterer))
	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts, err := cfg.AsynqRedisOpt()
	if err != nil {
		logger.Error("asynq redis options", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// A fresh worker process may serve a new snapshot, so start from a
	// clean cache version.
	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := client.EnqueueDashboardWarmup(ctx, jobs.DashboardWarmupPayload{Bump: true}); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
	}
	if err := client.Close(); err != nil {
		logger.Warn("job client close", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
