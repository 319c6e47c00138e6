package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// Project splits duration into a paid portion drawn from balance and an LOP remainder.
// Unpaid types and non-positive balances put the whole duration into LOP.
func Project(balance, duration decimal.Decimal, isPaid bool) leave.Impact {
	impact := leave.Impact{
		Duration:      duration,
		PaidDays:      decimal.Zero,
		LOPDays:       duration,
		BalanceBefore: balance,
		BalanceAfter:  balance,
	}
	if !isPaid || !balance.IsPositive() {
		return impact
	}

	paid := decimal.Min(balance, duration)
	impact.PaidDays = paid
	impact.LOPDays = duration.Sub(paid)
	impact.BalanceAfter = balance.Sub(paid)
	return impact
}

// ApplyAdjustment applies an admin adjustment. Only add and set move TotalAllocated.
// A subtract below zero is refused; the persisted balance never goes negative.
func ApplyAdjustment(b leave.LeaveBalance, op leave.AdjustOp, amount decimal.Decimal) (leave.LeaveBalance, error) {
	if amount.IsNegative() {
		return b, validator.ValidationErrors{{Field: "amount", Message: "amount must not be negative"}}
	}
	if !validator.HasMaxScale(amount, leave.DayScale) {
		return b, validator.ValidationErrors{{Field: "amount", Message: "amount must have at most 2 decimal places"}}
	}

	switch op {
	case leave.AdjustAdd:
		b.CurrentBalance = b.CurrentBalance.Add(amount)
		b.TotalAllocated = b.TotalAllocated.Add(amount)
	case leave.AdjustSubtract:
		next := b.CurrentBalance.Sub(amount)
		if next.IsNegative() {
			return b, fmt.Errorf("%w: balance %s, subtract %s", leave.ErrInsufficientBalance, b.CurrentBalance, amount)
		}
		b.CurrentBalance = next
	case leave.AdjustSet:
		b.CurrentBalance = amount
		b.TotalAllocated = amount
	default:
		return b, validator.ValidationErrors{{Field: "op", Message: "op must be one of: add, subtract, set"}}
	}
	return b, nil
}

// credit returns consumed days to the spendable balance without touching TotalAllocated.
func credit(b leave.LeaveBalance, days decimal.Decimal) leave.LeaveBalance {
	b.CurrentBalance = b.CurrentBalance.Add(days)
	return b
}

// AllocatePaid spreads an application's paid days over its dates in chronological order.
// Each date can carry at most one day, or half a day for a half-day application.
func AllocatePaid(app leave.LeaveApplication) map[time.Time]decimal.Decimal {
	unit := fullDay
	if app.IsHalfDay {
		unit = halfDay
	}

	remaining := app.PaidDays
	out := make(map[time.Time]decimal.Decimal)
	for d := app.FromDate; !d.After(app.ToDate); d = d.AddDate(0, 0, 1) {
		paid := decimal.Min(unit, remaining)
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		out[d] = paid
		remaining = remaining.Sub(paid)
	}
	return out
}
