package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/honai-puma/honai-puma/internal/jobs"
	"github.com/honai-puma/honai-puma/internal/report"
)

// CacheBumpJob invalidates every cached rollup at once. The warehouse
// pipeline enqueues it after each load so readers flip to fresh data in
// a single version step.
type CacheBumpJob struct {
	Cache   *report.Cache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCacheBumpJob wires dependencies for the bump handler.
func NewCacheBumpJob(cache *report.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: handler not configured")
	}
	tracker := j.metrics().Track(TaskCacheBump)
	err := j.Cache.Bump(ctx)
	if err != nil && j.Logger != nil {
		j.Logger.Error("bump report cache", slog.Any("error", err))
	}
	return tracker.End(err)
}

func (j *CacheBumpJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
