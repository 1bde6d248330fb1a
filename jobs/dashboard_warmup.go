package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/retailpulse/retailpulse/internal/dashboard"
	jobmetrics "github.com/retailpulse/retailpulse/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmupTimeout = 2 * time.Minute

// Warmer is the slice of the dashboard service used by the warmup job.
type Warmer interface {
	Warm(ctx context.Context, combos []dashboard.FilterState, limit int) (int, error)
	Invalidate(ctx context.Context) (int64, error)
}

// DashboardWarmupJob derives every filter combination into the view cache.
type DashboardWarmupJob struct {
	Service Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Limit   int
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(service Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		Limit:   dashboard.DefaultWarmLimit,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	return j.Run(ctx, payload)
}

// Run executes one warmup pass outside of Asynq.
func (j *DashboardWarmupJob) Run(ctx context.Context, payload DashboardWarmupPayload) (resultErr error) {
	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Bool("bump", payload.Bump))
	start := j.now()
	logger.Info("starting dashboard warmup")

	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	if payload.Bump {
		version, err := j.Service.Invalidate(ctx)
		if err != nil {
			logger.Error("bump cache version", slog.Any("error", err))
			return err
		}
		logger = logger.With(slog.Int64("version", version))
	}

	warmed, err := j.Service.Warm(ctx, dashboard.AllFilterCombinations(), j.Limit)
	if err != nil {
		logger.Error("warm dashboard views", slog.Any("error", err))
		return err
	}
	j.metrics().AddWarmed(warmed)

	logger.Info("completed dashboard warmup", slog.Int("views", warmed), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
