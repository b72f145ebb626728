package credit

import (
	"errors"
	"time"
)

// Status enumerates credit plan lifecycle states.
type Status string

const (
	// StatusActive marks a plan with outstanding balance.
	StatusActive Status = "active"
	// StatusCompleted marks a fully paid plan.
	StatusCompleted Status = "completed"
	// StatusOverdue marks an active plan whose next payment date has passed.
	StatusOverdue Status = "overdue"
)

const (
	// DefaultInstallments is the house policy for credit sales.
	DefaultInstallments = 12
	// DefaultFirstPaymentIn is the delay before the first installment is due.
	DefaultFirstPaymentIn = 30 * 24 * time.Hour
)

// Plan is an installment schedule created for a deferred-payment sale.
// Created once; afterwards only payment registration and the overdue scan
// touch it.
type Plan struct {
	ID                string    `json:"id"`
	CustomerName      string    `json:"customer_name"`
	CustomerPhone     string    `json:"customer_phone"`
	CustomerAddress   string    `json:"customer_address"`
	ProductName       string    `json:"product_name"`
	TotalAmount       float64   `json:"total_amount"`
	PaidAmount        float64   `json:"paid_amount"`
	RemainingAmount   float64   `json:"remaining_amount"`
	Installments      int       `json:"installments"`
	InstallmentAmount float64   `json:"installment_amount"`
	NextPaymentDate   time.Time `json:"next_payment_date"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	StoreID           string    `json:"store_id"`
}

// FinalInstallment returns the last installment, which absorbs the cent
// remainder left by flooring InstallmentAmount.
func (p Plan) FinalInstallment() float64 {
	if p.Installments <= 1 {
		return p.TotalAmount
	}
	return roundCents(p.TotalAmount - p.InstallmentAmount*float64(p.Installments-1))
}

// ErrInvalidTotal indicates a non-positive plan total.
var ErrInvalidTotal = errors.New("credit: total must be positive")

// ErrInvalidInstallments indicates an installment count below one.
var ErrInvalidInstallments = errors.New("credit: installments must be at least 1")

// ErrPlanNotFound indicates a missing plan row.
var ErrPlanNotFound = errors.New("credit: plan not found")

// ErrInvalidAmount indicates a payment that is non-positive or exceeds the
// remaining balance.
var ErrInvalidAmount = errors.New("credit: invalid payment amount")

// ErrPlanCompleted indicates a payment against an already settled plan.
var ErrPlanCompleted = errors.New("credit: plan already completed")
