package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bodega-pos/bodega-pos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueMarker flips past-due credit plans to overdue.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CreditOverdueScanJob sweeps active plans whose next payment date passed.
type CreditOverdueScanJob struct {
	Marker  OverdueMarker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewCreditOverdueScanJob initialises the overdue sweep handler.
func NewCreditOverdueScanJob(marker OverdueMarker, logger *slog.Logger, metrics *jobmetrics.Metrics) *CreditOverdueScanJob {
	return &CreditOverdueScanJob{
		Marker:  marker,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the sweep.
func (j *CreditOverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Marker == nil {
		return errors.New("credit overdue scan: handler not configured")
	}
	var payload CreditOverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	now := payload.ScheduledFor
	if now.IsZero() {
		now = j.now()
	}

	tracker := j.metrics().Track(TaskCreditOverdueScan)
	logger := j.logger()
	logger.Info("starting overdue scan", slog.Time("as_of", now))

	count, err := j.Marker.MarkOverdue(ctx, now)
	if err != nil {
		logger.Error("overdue scan failed", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed overdue scan", slog.Int64("marked", count))
	return tracker.End(nil)
}

func (j *CreditOverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCreditOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskCreditOverdueScan))
}

func (j *CreditOverdueScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CreditOverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
