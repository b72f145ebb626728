package credit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// paidTolerance treats sub-cent residue as settled.
const paidTolerance = 0.005

// Service handles credit plan lifecycle beyond creation: listing, payment
// registration and the overdue sweep.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and persists a manually entered plan (credit granted
// outside a sale, e.g. imported paper contracts).
func (s *Service) Create(ctx context.Context, input ScheduleInput) (Plan, error) {
	if input.StoreID == "" {
		return Plan{}, errors.New("credit: store id required")
	}
	if input.CustomerName == "" {
		return Plan{}, errors.New("credit: customer name required")
	}
	plan, err := Schedule(input)
	if err != nil {
		return Plan{}, err
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Get returns one plan.
func (s *Service) Get(ctx context.Context, id string) (Plan, error) {
	if id == "" {
		return Plan{}, ErrPlanNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns the store's plans.
func (s *Service) List(ctx context.Context, storeID string) ([]Plan, error) {
	if storeID == "" {
		return nil, errors.New("credit: store id required")
	}
	return s.repo.ListByStore(ctx, storeID)
}

// RegisterPayment records an installment payment against a plan. The plan row
// is read under a row lock so concurrent payments cannot both pass the
// remaining-balance check.
func (s *Service) RegisterPayment(ctx context.Context, planID string, amount float64) (Plan, error) {
	if planID == "" {
		return Plan{}, ErrPlanNotFound
	}
	if amount <= 0 {
		return Plan{}, ErrInvalidAmount
	}

	var updated Plan
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		plan, err := tx.GetPlanForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if plan.Status == StatusCompleted {
			return ErrPlanCompleted
		}
		if amount > plan.RemainingAmount+paidTolerance {
			return ErrInvalidAmount
		}

		plan.PaidAmount = roundCents(plan.PaidAmount + amount)
		plan.RemainingAmount = roundCents(plan.TotalAmount - plan.PaidAmount)
		if plan.RemainingAmount <= paidTolerance {
			plan.RemainingAmount = 0
			plan.Status = StatusCompleted
		} else {
			plan.Status = StatusActive
			plan.NextPaymentDate = plan.NextPaymentDate.Add(DefaultFirstPaymentIn)
		}

		if err := tx.UpdatePlan(ctx, plan); err != nil {
			return err
		}
		updated = plan
		return nil
	})
	if err != nil {
		return Plan{}, err
	}
	return updated, nil
}

// MarkOverdue flips active plans whose next payment date passed before now.
// Invoked by the nightly worker scan.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	count, err := s.repo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.logger != nil {
		s.logger.Info("credit plans marked overdue", slog.Int64("count", count))
	}
	return count, nil
}
