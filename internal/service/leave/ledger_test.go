package leave

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		duration float64
		isPaid   bool
		paid     float64
		lop      float64
		after    float64
	}{
		{"balance covers duration", 10, 3, true, 3, 0, 7},
		{"balance exactly equals duration", 3, 3, true, 3, 0, 0},
		{"partial paid spills into lop", 5, 8, true, 5, 3, 0},
		{"zero balance is all lop", 0, 4, true, 0, 4, 0},
		{"negative balance is all lop", -2, 4, true, 0, 4, -2},
		{"unpaid type is all lop", 10, 2, false, 0, 2, 10},
		{"half day against half balance", 0.5, 0.5, true, 0.5, 0, 0},
		{"half balance against full day", 0.5, 1, true, 0.5, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := Project(d(tt.balance), d(tt.duration), tt.isPaid)

			assert.True(t, impact.PaidDays.Equal(d(tt.paid)), "paid: got %s", impact.PaidDays)
			assert.True(t, impact.LOPDays.Equal(d(tt.lop)), "lop: got %s", impact.LOPDays)
			assert.True(t, impact.BalanceAfter.Equal(d(tt.after)), "after: got %s", impact.BalanceAfter)
			assert.True(t, impact.PaidDays.Add(impact.LOPDays).Equal(d(tt.duration)))
		})
	}
}

func TestApplyAdjustment_Add(t *testing.T) {
	b, err := ApplyAdjustment(annualBalance(4, 10), leave.AdjustAdd, d(2))

	require.NoError(t, err)
	assert.True(t, b.CurrentBalance.Equal(d(6)))
	assert.True(t, b.TotalAllocated.Equal(d(12)))
}

func TestApplyAdjustment_SubtractLeavesAllocationAlone(t *testing.T) {
	b, err := ApplyAdjustment(annualBalance(4, 10), leave.AdjustSubtract, d(1.5))

	require.NoError(t, err)
	assert.True(t, b.CurrentBalance.Equal(d(2.5)))
	assert.True(t, b.TotalAllocated.Equal(d(10)))
}

func TestApplyAdjustment_SubtractBelowZeroRefused(t *testing.T) {
	_, err := ApplyAdjustment(annualBalance(1, 10), leave.AdjustSubtract, d(2))

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestApplyAdjustment_SetIsIdempotent(t *testing.T) {
	// Setup
	b := annualBalance(3, 7)

	// Act
	once, err := ApplyAdjustment(b, leave.AdjustSet, d(10))
	require.NoError(t, err)
	twice, err := ApplyAdjustment(once, leave.AdjustSet, d(10))
	require.NoError(t, err)

	// Assert
	assert.True(t, twice.CurrentBalance.Equal(d(10)))
	assert.True(t, twice.TotalAllocated.Equal(d(10)))
	assert.Equal(t, once, twice)
}

func TestApplyAdjustment_InvalidInput(t *testing.T) {
	_, err := ApplyAdjustment(annualBalance(1, 1), leave.AdjustAdd, d(-1))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "amount", verrs[0].Field)

	_, err = ApplyAdjustment(annualBalance(1, 1), leave.AdjustOp("multiply"), d(1))
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "op", verrs[0].Field)
}

func TestApplyAdjustment_FinerThanStoredScaleRefused(t *testing.T) {
	_, err := ApplyAdjustment(annualBalance(1, 1), leave.AdjustAdd, d(0.125))

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "amount", verrs[0].Field)
}

func TestAllocatePaid_Chronological(t *testing.T) {
	app := leave.LeaveApplication{
		FromDate: calendar.NewDate(2025, 3, 10),
		ToDate:   calendar.NewDate(2025, 3, 14),
		PaidDays: d(2),
	}

	got := AllocatePaid(app)

	require.Len(t, got, 5)
	assert.True(t, got[calendar.NewDate(2025, 3, 10)].Equal(d(1)))
	assert.True(t, got[calendar.NewDate(2025, 3, 11)].Equal(d(1)))
	assert.True(t, got[calendar.NewDate(2025, 3, 12)].IsZero())
	assert.True(t, got[calendar.NewDate(2025, 3, 14)].IsZero())
}

func TestAllocatePaid_HalfDay(t *testing.T) {
	date := calendar.NewDate(2025, 3, 10)
	app := leave.LeaveApplication{FromDate: date, ToDate: date, IsHalfDay: true, PaidDays: d(0.5)}

	got := AllocatePaid(app)

	assert.True(t, got[date].Equal(d(0.5)))
}
