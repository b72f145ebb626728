package credit

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ScheduleInput describes a credit sale to derive a plan from.
type ScheduleInput struct {
	Total           float64
	Installments    int           // 0 means DefaultInstallments
	FirstPaymentIn  time.Duration // 0 means DefaultFirstPaymentIn
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	ProductName     string
	StoreID         string
	Now             time.Time // zero means time.Now
}

// Schedule derives an installment plan from a completed cash-equivalent
// total. The installment amount is floored to whole cents; the final
// installment absorbs the remainder so the installments always sum to the
// total exactly.
func Schedule(input ScheduleInput) (Plan, error) {
	if input.Total <= 0 {
		return Plan{}, ErrInvalidTotal
	}
	installments := input.Installments
	if installments == 0 {
		installments = DefaultInstallments
	}
	if installments < 1 {
		return Plan{}, ErrInvalidInstallments
	}
	offset := input.FirstPaymentIn
	if offset == 0 {
		offset = DefaultFirstPaymentIn
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return Plan{
		ID:                uuid.New().String(),
		CustomerName:      input.CustomerName,
		CustomerPhone:     input.CustomerPhone,
		CustomerAddress:   input.CustomerAddress,
		ProductName:       input.ProductName,
		TotalAmount:       input.Total,
		PaidAmount:        0,
		RemainingAmount:   input.Total,
		Installments:      installments,
		InstallmentAmount: floorCents(input.Total / float64(installments)),
		NextPaymentDate:   now.Add(offset),
		Status:            StatusActive,
		CreatedAt:         now,
		StoreID:           input.StoreID,
	}, nil
}

func floorCents(v float64) float64 {
	return math.Floor(v*100) / 100
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
