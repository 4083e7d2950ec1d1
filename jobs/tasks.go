package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-computes the default rollup of every metric.
	TaskReportWarmup = "report:warmup"
	// TaskCacheBump invalidates the report cache after a warehouse load.
	TaskCacheBump = "report:bump"
)

// ReportWarmupPayload selects which metrics to warm. Empty means every
// registered metric.
type ReportWarmupPayload struct {
	Metrics []string `json:"metrics,omitempty"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewCacheBumpTask constructs the cache invalidation task.
func NewCacheBumpTask() *asynq.Task {
	return asynq.NewTask(TaskCacheBump, nil)
}
