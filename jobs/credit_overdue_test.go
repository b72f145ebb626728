package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeMarker struct {
	calledWith time.Time
	count      int64
	err        error
}

func (m *fakeMarker) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	m.calledWith = now
	return m.count, m.err
}

func overdueTask(t *testing.T, payload CreditOverdueScanPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TaskCreditOverdueScan, data)
}

func TestOverdueScanUsesScheduledInstant(t *testing.T) {
	marker := &fakeMarker{count: 3}
	job := NewCreditOverdueScanJob(marker, nil, nil)
	asOf := time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)

	err := job.Handle(context.Background(), overdueTask(t, CreditOverdueScanPayload{ScheduledFor: asOf}))
	require.NoError(t, err)
	require.Equal(t, asOf, marker.calledWith)
}

func TestOverdueScanDefaultsToClock(t *testing.T) {
	marker := &fakeMarker{}
	job := NewCreditOverdueScanJob(marker, nil, nil)
	fixed := time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return fixed }

	err := job.Handle(context.Background(), overdueTask(t, CreditOverdueScanPayload{}))
	require.NoError(t, err)
	require.Equal(t, fixed, marker.calledWith)
}

func TestOverdueScanPropagatesError(t *testing.T) {
	marker := &fakeMarker{err: errors.New("db down")}
	job := NewCreditOverdueScanJob(marker, nil, nil)

	err := job.Handle(context.Background(), overdueTask(t, CreditOverdueScanPayload{}))
	require.Error(t, err)
}
