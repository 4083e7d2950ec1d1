package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/honai-puma/honai-puma/internal/jobs"
	"github.com/honai-puma/honai-puma/internal/report"
	"github.com/honai-puma/honai-puma/internal/territory"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportService is the slice of the reporting service the warmup needs.
type ReportService interface {
	Metrics() []report.Adapter
	ComputeRollup(ctx context.Context, id report.MetricID, date *time.Time, filter territory.Filter) (report.Result, error)
}

// ReportWarmupJob pre-populates the rollup cache with the unfiltered,
// latest-date report of each metric, so the first dashboard hit of the
// day never pays the cold fan-out.
type ReportWarmupJob struct {
	Service ReportService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(service ReportService, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle processes report warmup tasks. One failing metric does not stop
// the others; the task fails (and retries) if any metric failed.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() { _ = tracker.End(resultErr) }()

	selected := j.selectMetrics(payload)
	logger := j.logger()
	logger.Info("starting report warmup", slog.Int("metrics", len(selected)))

	start := time.Now()
	warmed := 0
	for _, id := range selected {
		if err := j.warmMetric(ctx, id); err != nil {
			resultErr = errors.Join(resultErr, err)
			j.metrics().AddWarmedReport(string(id), "failure")
			logger.Error("warm metric", slog.String("metric", string(id)), slog.Any("error", err))
			continue
		}
		j.metrics().AddWarmedReport(string(id), "success")
		warmed++
	}

	logger.Info("completed report warmup",
		slog.Int("warmed", warmed),
		slog.Int("failed", len(selected)-warmed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportWarmupJob) warmMetric(ctx context.Context, id report.MetricID) error {
	metricCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	// nil date = latest per the metric's pipeline latency; warming any
	// other key would never be hit first.
	_, err := j.Service.ComputeRollup(metricCtx, id, nil, territory.Filter{})
	return err
}

func (j *ReportWarmupJob) selectMetrics(payload ReportWarmupPayload) []report.MetricID {
	if len(payload.Metrics) > 0 {
		out := make([]report.MetricID, 0, len(payload.Metrics))
		for _, m := range payload.Metrics {
			out = append(out, report.MetricID(m))
		}
		return out
	}
	adapters := j.Service.Metrics()
	out := make([]report.MetricID, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.ID)
	}
	return out
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
