package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCreditOverdueScan is the task type for the nightly overdue sweep.
	TaskCreditOverdueScan = "credit:overdue_scan"
	// TaskCatalogWarmup is the task type for pre-populating listing caches.
	TaskCatalogWarmup = "catalog:warmup"
)

// CreditOverdueScanPayload parameterises one overdue sweep.
type CreditOverdueScanPayload struct {
	// ScheduledFor pins the comparison instant; zero means run time.
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
}

// NewCreditOverdueScanTask constructs an Asynq task.
func NewCreditOverdueScanTask(payload CreditOverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditOverdueScan, data), nil
}

// CatalogWarmupPayload names the store whose listing cache to warm.
type CatalogWarmupPayload struct {
	StoreID string `json:"store_id"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
