package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup precomputes every dashboard view into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload configures a warmup run. Bump invalidates every
// cached view before the cache is refilled.
type DashboardWarmupPayload struct {
	Bump bool `json:"bump"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.Queue(QueueDefault)), nil
}
