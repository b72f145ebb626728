package credit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleEvenSplit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	plan, err := Schedule(ScheduleInput{
		Total:        1200,
		CustomerName: "Rosa Quispe",
		ProductName:  "Ropero 6 puertas",
		StoreID:      "muebles",
		Now:          now,
	})
	require.NoError(t, err)

	require.NotEmpty(t, plan.ID)
	require.Equal(t, 12, plan.Installments)
	require.Equal(t, 100.0, plan.InstallmentAmount)
	require.Equal(t, 1200.0, plan.TotalAmount)
	require.Equal(t, 0.0, plan.PaidAmount)
	require.Equal(t, 1200.0, plan.RemainingAmount)
	require.Equal(t, StatusActive, plan.Status)
	require.Equal(t, now.Add(30*24*time.Hour), plan.NextPaymentDate)
	require.Equal(t, now, plan.CreatedAt)
}

func TestScheduleFloorsInstallmentCents(t *testing.T) {
	plan, err := Schedule(ScheduleInput{Total: 1000, StoreID: "muebles"})
	require.NoError(t, err)

	require.Equal(t, 83.33, plan.InstallmentAmount)
	require.Equal(t, 83.37, plan.FinalInstallment())

	sum := plan.InstallmentAmount * float64(plan.Installments-1)
	require.InDelta(t, plan.TotalAmount, sum+plan.FinalInstallment(), 0.001)
}

func TestScheduleCustomInstallments(t *testing.T) {
	plan, err := Schedule(ScheduleInput{Total: 600, Installments: 6, StoreID: "muebles"})
	require.NoError(t, err)
	require.Equal(t, 6, plan.Installments)
	require.Equal(t, 100.0, plan.InstallmentAmount)
}

func TestScheduleRejectsBadInput(t *testing.T) {
	_, err := Schedule(ScheduleInput{Total: 0})
	require.ErrorIs(t, err, ErrInvalidTotal)

	_, err = Schedule(ScheduleInput{Total: -50})
	require.ErrorIs(t, err, ErrInvalidTotal)

	_, err = Schedule(ScheduleInput{Total: 100, Installments: -3})
	require.ErrorIs(t, err, ErrInvalidInstallments)
}

func TestFinalInstallmentSinglePayment(t *testing.T) {
	plan, err := Schedule(ScheduleInput{Total: 250.5, Installments: 1})
	require.NoError(t, err)
	require.Equal(t, 250.5, plan.FinalInstallment())
}
