package credit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryPlanRepo struct {
	plans map[string]Plan
}

func newMemoryPlanRepo() *memoryPlanRepo {
	return &memoryPlanRepo{plans: make(map[string]Plan)}
}

func (r *memoryPlanRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryPlanRepo) GetPlanForUpdate(ctx context.Context, id string) (Plan, error) {
	return r.Get(ctx, id)
}

func (r *memoryPlanRepo) UpdatePlan(ctx context.Context, plan Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return ErrPlanNotFound
	}
	r.plans[plan.ID] = plan
	return nil
}

func (r *memoryPlanRepo) Create(ctx context.Context, plan Plan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *memoryPlanRepo) Get(ctx context.Context, id string) (Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func (r *memoryPlanRepo) ListByStore(ctx context.Context, storeID string) ([]Plan, error) {
	var out []Plan
	for _, p := range r.plans {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPlanRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for id, p := range r.plans {
		if p.Status == StatusActive && p.NextPaymentDate.Before(now) {
			p.Status = StatusOverdue
			r.plans[id] = p
			count++
		}
	}
	return count, nil
}

func seedPlan(t *testing.T, repo *memoryPlanRepo, total float64) Plan {
	t.Helper()
	plan, err := Schedule(ScheduleInput{
		Total:        total,
		CustomerName: "Rosa Quispe",
		ProductName:  "Ropero",
		StoreID:      "muebles",
		Now:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), plan))
	return plan
}

func TestRegisterPaymentPartial(t *testing.T) {
	repo := newMemoryPlanRepo()
	plan := seedPlan(t, repo, 1200)
	svc := NewService(repo, nil)

	updated, err := svc.RegisterPayment(context.Background(), plan.ID, 100)
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.PaidAmount)
	require.Equal(t, 1100.0, updated.RemainingAmount)
	require.Equal(t, StatusActive, updated.Status)
	require.Equal(t, plan.NextPaymentDate.Add(30*24*time.Hour), updated.NextPaymentDate)
}

func TestRegisterPaymentCompletesPlan(t *testing.T) {
	repo := newMemoryPlanRepo()
	plan := seedPlan(t, repo, 300)
	svc := NewService(repo, nil)

	updated, err := svc.RegisterPayment(context.Background(), plan.ID, 300)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)
	require.Equal(t, 0.0, updated.RemainingAmount)

	_, err = svc.RegisterPayment(context.Background(), plan.ID, 25)
	require.ErrorIs(t, err, ErrPlanCompleted)
}

func TestRegisterPaymentRejectsOverpay(t *testing.T) {
	repo := newMemoryPlanRepo()
	plan := seedPlan(t, repo, 500)
	svc := NewService(repo, nil)

	_, err := svc.RegisterPayment(context.Background(), plan.ID, 600)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RegisterPayment(context.Background(), plan.ID, -10)
	require.ErrorIs(t, err, ErrInvalidAmount)

	stored, err := repo.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, stored.PaidAmount)
}

func TestRegisterPaymentReactivatesOverdue(t *testing.T) {
	repo := newMemoryPlanRepo()
	plan := seedPlan(t, repo, 400)
	plan.Status = StatusOverdue
	repo.plans[plan.ID] = plan
	svc := NewService(repo, nil)

	updated, err := svc.RegisterPayment(context.Background(), plan.ID, 50)
	require.NoError(t, err)
	require.Equal(t, StatusActive, updated.Status)
}

func TestMarkOverdueSweep(t *testing.T) {
	repo := newMemoryPlanRepo()
	due := seedPlan(t, repo, 100)
	current := seedPlan(t, repo, 200)
	svc := NewService(repo, nil)

	after := due.NextPaymentDate.Add(24 * time.Hour)
	currentPlan := repo.plans[current.ID]
	currentPlan.NextPaymentDate = after.Add(10 * 24 * time.Hour)
	repo.plans[current.ID] = currentPlan

	count, err := svc.MarkOverdue(context.Background(), after)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	duePlan, err := repo.Get(context.Background(), due.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, duePlan.Status)

	stillActive, err := repo.Get(context.Background(), current.ID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, stillActive.Status)
}

func TestCreateRequiresCustomer(t *testing.T) {
	svc := NewService(newMemoryPlanRepo(), nil)

	_, err := svc.Create(context.Background(), ScheduleInput{Total: 100, StoreID: "muebles"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), ScheduleInput{Total: 100, CustomerName: "Rosa"})
	require.Error(t, err)

	plan, err := svc.Create(context.Background(), ScheduleInput{Total: 100, CustomerName: "Rosa", StoreID: "muebles"})
	require.NoError(t, err)
	require.Equal(t, StatusActive, plan.Status)
}
