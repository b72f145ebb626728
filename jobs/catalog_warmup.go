package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bodega-pos/bodega-pos/internal/jobs"
)

// CatalogWarmer pre-populates a store's listing cache.
type CatalogWarmer interface {
	Warmup(ctx context.Context, storeID string) error
}

// CatalogWarmupJob loads a store listing through the cache so the first
// request after an invalidation does not pay the database round trip.
type CatalogWarmupJob struct {
	Warmer  CatalogWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCatalogWarmupJob initialises the warmup handler.
func NewCatalogWarmupJob(warmer CatalogWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{Warmer: warmer, Logger: logger, Metrics: metrics}
}

// Handle executes the warmup.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.StoreID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCatalogWarmup)
	logger := j.logger().With(slog.String("store_id", payload.StoreID))
	if err := j.Warmer.Warmup(ctx, payload.StoreID); err != nil {
		logger.Error("warmup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("catalog cache warmed")
	return tracker.End(nil)
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}

func (j *CatalogWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
